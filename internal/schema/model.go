// internal/schema/model.go
//
// Schema catalog row models.
//
// Context
// -------
// The catalog is the runtime reflection registry of the host: every data
// model the platform persists, and every field declared on it.  Required-
// field rules reference these rows, and the record hooks consult the field
// set by name at validation time.
//
// Schema reference
//
//	CREATE TABLE schema_model (
//	    id     BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
//	    name   VARCHAR(128) NOT NULL UNIQUE,   -- technical, e.g. res.partner
//	    label  VARCHAR(256) NOT NULL
//	);
//	CREATE TABLE schema_field (
//	    id       BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
//	    model_id BIGINT UNSIGNED NOT NULL REFERENCES schema_model(id) ON DELETE CASCADE,
//	    name     VARCHAR(128) NOT NULL,
//	    label    VARCHAR(256) NOT NULL,
//	    type     VARCHAR(32)  NOT NULL DEFAULT 'char',
//	    UNIQUE (model_id, name)
//	);
//
// Notes
// -----
// • Pure data; no behaviour.
// • Oxford commas, two spaces after periods.
package schema

// Model mirrors one row in `schema_model`.
type Model struct {
	ID    int64  `db:"id"    json:"id"`
	Name  string `db:"name"  json:"name"  yaml:"name"`
	Label string `db:"label" json:"label" yaml:"label"`
}

// Field mirrors one row in `schema_field`.
type Field struct {
	ID      int64  `db:"id"       json:"id"`
	ModelID int64  `db:"model_id" json:"model_id"`
	Name    string `db:"name"     json:"name"  yaml:"name"`
	Label   string `db:"label"    json:"label" yaml:"label"`
	Type    string `db:"type"     json:"type"  yaml:"type"`
}

// Migrations returns the idempotent DDL for the catalog tables.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS schema_model (
		    id     BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
		    name   VARCHAR(128) NOT NULL,
		    label  VARCHAR(256) NOT NULL,
		    UNIQUE KEY uq_schema_model_name (name)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS schema_field (
		    id       BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
		    model_id BIGINT UNSIGNED NOT NULL,
		    name     VARCHAR(128) NOT NULL,
		    label    VARCHAR(256) NOT NULL,
		    type     VARCHAR(32)  NOT NULL DEFAULT 'char',
		    UNIQUE KEY uq_schema_field_model_name (model_id, name),
		    CONSTRAINT fk_schema_field_model FOREIGN KEY (model_id)
		        REFERENCES schema_model (id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
	}
}
