// internal/i18n/i18n.go
//
// User-facing message catalog.
//
// Context
// -------
// Validation failures are shown verbatim to end users, so every message
// the rule store and record hooks raise goes through this catalog.  The
// catalog wraps go-playground/universal-translator with one translator per
// supported locale (en, fr) and also registers validator/v10's built-in
// tag translations so struct-validation errors on rule input read the same
// way.
//
// The locale comes from requestinfo (Accept-Language).  Unknown locales
// fall back to the configured default.
//
// Notes
// -----
// • Placeholders use the translator's {0}, {1} syntax.
// • Oxford commas, two spaces after periods.
package i18n

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"
	"go.uber.org/zap"

	"github.com/yanizio/adept-reqfields/internal/requestinfo"
)

// Message keys.
const (
	RequiredMissing  = "required.missing"
	RuleDuplicate    = "rule.duplicate"
	RuleFieldModel   = "rule.field_model"
	RuleModelUnknown = "rule.model_unknown"
	RuleNotFound     = "rule.not_found"
	RecordNotFound   = "record.not_found"
	ModelUnknown     = "schema.model_unknown"
	FormExpired      = "form.expired"
)

var messages = map[string]map[string]string{
	"en": {
		RequiredMissing:  "The following required fields must be filled:\n{0}",
		RuleDuplicate:    "This field is already set as required for the selected model.",
		RuleFieldModel:   "Field {0} does not belong to model {1}.",
		RuleModelUnknown: "The selected model does not exist.",
		RuleNotFound:     "Required-field rule {0} does not exist.",
		RecordNotFound:   "Record {0} of model {1} does not exist.",
		ModelUnknown:     "Model {0} does not exist.",
		FormExpired:      "This form has expired.  Reload the page and try again.",
	},
	"fr": {
		RequiredMissing:  "Les champs obligatoires suivants doivent être renseignés :\n{0}",
		RuleDuplicate:    "Ce champ est déjà défini comme obligatoire pour le modèle sélectionné.",
		RuleFieldModel:   "Le champ {0} n'appartient pas au modèle {1}.",
		RuleModelUnknown: "Le modèle sélectionné n'existe pas.",
		RuleNotFound:     "La règle de champs obligatoires {0} n'existe pas.",
		RecordNotFound:   "L'enregistrement {0} du modèle {1} n'existe pas.",
		ModelUnknown:     "Le modèle {0} n'existe pas.",
		FormExpired:      "Ce formulaire a expiré.  Rechargez la page et réessayez.",
	},
}

// Catalog resolves translators by locale.
type Catalog struct {
	uni      *ut.UniversalTranslator
	fallback string
}

// New builds a catalog whose fallback locale is fallback ("en" when empty).
func New(fallback string) (*Catalog, error) {
	if fallback == "" {
		fallback = "en"
	}
	supported := map[string]locales.Translator{"en": en.New(), "fr": fr.New()}
	fb, ok := supported[fallback]
	if !ok {
		return nil, fmt.Errorf("i18n: unsupported fallback locale %q", fallback)
	}

	uni := ut.New(fb, supported["en"], supported["fr"])
	for loc, msgs := range messages {
		trans, _ := uni.GetTranslator(loc)
		for key, text := range msgs {
			if err := trans.Add(key, text, true); err != nil {
				return nil, fmt.Errorf("i18n %s/%s: %w", loc, key, err)
			}
		}
	}
	return &Catalog{uni: uni, fallback: fallback}, nil
}

// Translator returns the translator for locale, or the fallback.
func (c *Catalog) Translator(locale string) ut.Translator {
	trans, _ := c.uni.FindTranslator(locale, c.fallback)
	return trans
}

// T translates key for the locale carried by ctx.  A missing key yields
// the key itself so a typo never hides the underlying failure.
func (c *Catalog) T(ctx context.Context, key string, params ...string) string {
	msg, err := c.Translator(requestinfo.Locale(ctx)).T(key, params...)
	if err != nil {
		zap.S().Warnw("i18n missing translation", "key", key, "err", err)
		return key
	}
	return msg
}

// RegisterValidator installs validator/v10's tag translations for every
// supported locale.
func (c *Catalog) RegisterValidator(v *validator.Validate) error {
	if err := en_translations.RegisterDefaultTranslations(v, c.Translator("en")); err != nil {
		return err
	}
	return fr_translations.RegisterDefaultTranslations(v, c.Translator("fr"))
}

/*──────────────────────────── package default ─────────────────────────────*/

var def atomic.Pointer[Catalog]

func init() {
	c, err := New("en")
	if err != nil {
		panic(err)
	}
	def.Store(c)
}

// Default returns the process-wide catalog.
func Default() *Catalog { return def.Load() }

// SetDefault replaces the process-wide catalog (main does this once the
// configured default locale is known).
func SetDefault(c *Catalog) { def.Store(c) }

// T translates with the process-wide catalog.
func T(ctx context.Context, key string, params ...string) string {
	return Default().T(ctx, key, params...)
}
