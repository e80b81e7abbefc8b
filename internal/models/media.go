package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Media is one attachment on a post. Older clients send bare URL strings,
// newer ones send the object returned by /api/uploads; both forms are kept
// exactly as received. Entries of any other shape (null, numbers) and keys
// this type does not know are carried through untouched.
type Media struct {
	Filename     string `json:"filename,omitempty"`
	URL          string `json:"url"`
	PublicID     string `json:"public_id,omitempty"`
	ResourceType string `json:"resource_type,omitempty"`

	bare  bool
	raw   json.RawMessage
	extra map[string]json.RawMessage
}

// MediaURL builds a bare-string media reference.
func MediaURL(url string) Media {
	return Media{URL: url, bare: true}
}

// IsBare reports whether the reference was a plain URL string.
func (m Media) IsBare() bool {
	return m.bare
}

func (m Media) MarshalJSON() ([]byte, error) {
	if m.raw != nil {
		return m.raw, nil
	}
	if m.bare {
		return json.Marshal(m.URL)
	}
	type media Media
	if len(m.extra) == 0 {
		return json.Marshal(media(m))
	}

	out := make(map[string]json.RawMessage, len(m.extra)+4)
	for k, v := range m.extra {
		out[k] = v
	}
	known := []struct {
		key, value string
		always     bool
	}{
		{"filename", m.Filename, false},
		{"url", m.URL, true},
		{"public_id", m.PublicID, false},
		{"resource_type", m.ResourceType, false},
	}
	for _, f := range known {
		if _, kept := out[f.key]; kept && f.value == "" {
			continue
		}
		if f.value == "" && !f.always {
			continue
		}
		b, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		out[f.key] = b
	}
	return json.Marshal(out)
}

func (m *Media) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty media reference")
	}

	switch data[0] {
	case '"':
		var url string
		if err := json.Unmarshal(data, &url); err != nil {
			return err
		}
		*m = MediaURL(url)
		return nil
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return fmt.Errorf("invalid media reference: %w", err)
		}
		*m = Media{}
		for key, dest := range map[string]*string{
			"filename":      &m.Filename,
			"url":           &m.URL,
			"public_id":     &m.PublicID,
			"resource_type": &m.ResourceType,
		} {
			v, ok := fields[key]
			if !ok {
				continue
			}
			// Non-string values stay in extra and are written back as they came.
			if err := json.Unmarshal(v, dest); err == nil && string(bytes.TrimSpace(v)) != "null" {
				delete(fields, key)
			}
		}
		if len(fields) > 0 {
			m.extra = fields
		}
		return nil
	default:
		if !json.Valid(data) {
			return fmt.Errorf("invalid media reference")
		}
		*m = Media{raw: append(json.RawMessage(nil), data...)}
		return nil
	}
}
