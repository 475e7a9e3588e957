package behavior

import (
	"encoding/json"
	"fmt"
)

// Properties is the content of properties.json.
type Properties struct {
	DisplayName string
	CanRotate   bool
	CanHanging  bool
	Function    Functionality
}

// DefaultProperties returns properties with the None variant.
func DefaultProperties() Properties {
	return Properties{Function: None{}}
}

// Reset restores the defaults.
func (p *Properties) Reset() {
	*p = DefaultProperties()
}

type propertiesJSON struct {
	DisplayName string          `json:"display_name"`
	CanRotate   bool            `json:"can_rotate"`
	CanHanging  bool            `json:"can_hanging"`
	Function    json.RawMessage `json:"function"`
}

// MarshalJSON implements json.Marshaler.
func (p Properties) MarshalJSON() ([]byte, error) {
	f := p.Function
	if f == nil {
		f = None{}
	}
	fn, err := f.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding %s function: %w", f.Type(), err)
	}
	return json.Marshal(propertiesJSON{
		DisplayName: p.DisplayName,
		CanRotate:   p.CanRotate,
		CanHanging:  p.CanHanging,
		Function:    fn,
	})
}

// Apply reads a properties.json document into p. Fields absent from the
// document keep their current value, an empty display name never replaces a
// set one, and the function variant is always replaced (None when missing).
func (p *Properties) Apply(data []byte) error {
	var raw struct {
		DisplayName *string         `json:"display_name"`
		CanRotate   *bool           `json:"can_rotate"`
		CanHanging  *bool           `json:"can_hanging"`
		Function    json.RawMessage `json:"function"`
	}
	if len(data) == 0 {
		data = []byte("{}")
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding properties: %w", err)
	}
	if raw.DisplayName != nil && *raw.DisplayName != "" {
		p.DisplayName = *raw.DisplayName
	}
	if raw.CanRotate != nil {
		p.CanRotate = *raw.CanRotate
	}
	if raw.CanHanging != nil {
		p.CanHanging = *raw.CanHanging
	}
	p.Function = Load(raw.Function)
	return nil
}
