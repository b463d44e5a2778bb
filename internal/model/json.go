package model

import "encoding/json"

// Status and ApprovalMethod persist and travel over the wire in their
// string forms.

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (m ApprovalMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *ApprovalMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseApprovalMethod(str)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
