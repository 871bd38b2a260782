package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// toJSON marshals v for a jsonb column. nil values become an empty document of the right kind.
func toJSON(v any, empty string) datatypes.JSON {
	if v == nil {
		return datatypes.JSON(empty)
	}
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return datatypes.JSON(empty)
	}
	return datatypes.JSON(b)
}

// fromJSON unmarshals a jsonb column into out, ignoring empty or malformed documents.
func fromJSON(data datatypes.JSON, out any) {
	if len(data) == 0 {
		return
	}
	_ = json.Unmarshal(data, out)
}
