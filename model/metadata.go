package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/IgorDevApp/aptcatalog/helper"
)

// Metadata represents JSONB metadata stored in PostgreSQL
type Metadata map[string]interface{}

// Value implements the driver.Valuer interface for database storage
func (m Metadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for database retrieval
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = Metadata{}
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return helper.NewError("byte assertion", errors.New("type assertion to []byte failed"))
	}

	return json.Unmarshal(b, m)
}

// LinkedGroupList stores a report's linked group summaries as JSONB
type LinkedGroupList []LinkedGroup

// Value implements the driver.Valuer interface for database storage
func (l LinkedGroupList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]LinkedGroup{})
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface for database retrieval
func (l *LinkedGroupList) Scan(value interface{}) error {
	if value == nil {
		*l = LinkedGroupList{}
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return helper.NewError("byte assertion", errors.New("type assertion to []byte failed"))
	}

	return json.Unmarshal(b, l)
}
