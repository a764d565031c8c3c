// internal/rule/model.go
//
// Required-field rule row model and input.
//
// Context
// -------
// A rule says "on model M, fields F1..Fn are mandatory".  Administrators
// edit rules through the management component; the record hooks read them
// through Resolve.  At most one rule exists per model.
//
// Schema reference
//
//	CREATE TABLE required_field_rule (
//	    id          BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
//	    model_id    BIGINT UNSIGNED NOT NULL UNIQUE
//	                REFERENCES schema_model(id) ON DELETE CASCADE,
//	    is_required TINYINT(1) NOT NULL DEFAULT 1,
//	    created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
//	    updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE …
//	);
//	CREATE TABLE required_field_rule_field (
//	    rule_id  BIGINT UNSIGNED REFERENCES required_field_rule(id) ON DELETE CASCADE,
//	    field_id BIGINT UNSIGNED REFERENCES schema_field(id) ON DELETE CASCADE,
//	    PRIMARY KEY (rule_id, field_id)
//	);
//
// Notes
// -----
// • IsRequired=false is a soft disable: Resolve ignores the rule entirely,
//   exactly as if it were absent.
// • Oxford commas, two spaces after periods.
package rule

import "time"

// Rule mirrors one `required_field_rule` row plus its field set.
type Rule struct {
	ID         int64     `db:"id"          json:"id"`
	ModelID    int64     `db:"model_id"    json:"model_id"`
	ModelName  string    `db:"model_name"  json:"model"`
	IsRequired bool      `db:"is_required" json:"is_required"`
	UpdatedAt  time.Time `db:"updated_at"  json:"updated_at"`
	FieldIDs   []int64   `db:"-"           json:"field_ids"`
}

// Input is what administrators submit on create or update.  A nil
// IsRequired means true.
type Input struct {
	ModelID    int64   `json:"model_id"    validate:"required,gt=0"`
	FieldIDs   []int64 `json:"field_ids"   validate:"dive,gt=0"`
	IsRequired *bool   `json:"is_required"`
}

func (in Input) required() bool { return in.IsRequired == nil || *in.IsRequired }

// Migrations returns the idempotent DDL for the rule tables.  The catalog
// tables must exist first.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS required_field_rule (
		    id          BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
		    model_id    BIGINT UNSIGNED NOT NULL,
		    is_required TINYINT(1) NOT NULL DEFAULT 1,
		    created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		    updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		    UNIQUE KEY uq_required_field_rule_model (model_id),
		    CONSTRAINT fk_required_field_rule_model FOREIGN KEY (model_id)
		        REFERENCES schema_model (id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS required_field_rule_field (
		    rule_id  BIGINT UNSIGNED NOT NULL,
		    field_id BIGINT UNSIGNED NOT NULL,
		    PRIMARY KEY (rule_id, field_id),
		    CONSTRAINT fk_rfr_field_rule FOREIGN KEY (rule_id)
		        REFERENCES required_field_rule (id) ON DELETE CASCADE,
		    CONSTRAINT fk_rfr_field_field FOREIGN KEY (field_id)
		        REFERENCES schema_field (id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
	}
}
