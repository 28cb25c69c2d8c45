package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ChoiceRef points at a choice either by numeric id or by its short code.
type ChoiceRef struct {
	id     int64
	code   string
	byCode bool
}

func ByID(id int64) ChoiceRef {
	return ChoiceRef{id: id}
}

func ByCode(code string) ChoiceRef {
	return ChoiceRef{code: code, byCode: true}
}

func (r ChoiceRef) IsCode() bool { return r.byCode }

func (r ChoiceRef) ID() int64 { return r.id }

func (r ChoiceRef) Code() string { return r.code }

func (r ChoiceRef) String() string {
	if r.byCode {
		return r.code
	}
	return strconv.FormatInt(r.id, 10)
}

// UnmarshalJSON maps JSON numbers to ByID and JSON strings to ByCode.
func (r *ChoiceRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var code string
		if err := json.Unmarshal(b, &code); err != nil {
			return err
		}
		*r = ByCode(code)
		return nil
	}
	var id int64
	if err := json.Unmarshal(b, &id); err != nil {
		return fmt.Errorf("choice reference must be an integer id or a code: %w", err)
	}
	*r = ByID(id)
	return nil
}

func (r ChoiceRef) MarshalJSON() ([]byte, error) {
	if r.byCode {
		return json.Marshal(r.code)
	}
	return json.Marshal(r.id)
}

// ChoiceRefs accepts either a single reference or a list of them.
type ChoiceRefs []ChoiceRef

func (rs *ChoiceRefs) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*rs = nil
		return nil
	}
	if len(b) > 0 && b[0] == '[' {
		var list []ChoiceRef
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*rs = list
		return nil
	}
	var one ChoiceRef
	if err := one.UnmarshalJSON(b); err != nil {
		return err
	}
	*rs = ChoiceRefs{one}
	return nil
}
