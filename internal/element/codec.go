package element

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEphemeral is returned when a Laser is offered where a persisted
// element is required.
var ErrEphemeral = errors.New("laser marks are not persisted")

// Each variant marshals as a flat record carrying its kind under "type".

func (e Freehand) MarshalJSON() ([]byte, error) {
	type plain Freehand
	return json.Marshal(struct {
		Type Kind `json:"type"`
		plain
	}{KindFreehand, plain(e)})
}

func (e Highlighter) MarshalJSON() ([]byte, error) {
	type plain Highlighter
	return json.Marshal(struct {
		Type Kind `json:"type"`
		plain
	}{KindHighlighter, plain(e)})
}

func (e Line) MarshalJSON() ([]byte, error) {
	type plain Line
	return json.Marshal(struct {
		Type Kind `json:"type"`
		plain
	}{KindLine, plain(e)})
}

func (e Rectangle) MarshalJSON() ([]byte, error) {
	type plain Rectangle
	return json.Marshal(struct {
		Type Kind `json:"type"`
		plain
	}{KindRectangle, plain(e)})
}

func (e Circle) MarshalJSON() ([]byte, error) {
	type plain Circle
	return json.Marshal(struct {
		Type Kind `json:"type"`
		plain
	}{KindCircle, plain(e)})
}

func (e Text) MarshalJSON() ([]byte, error) {
	type plain Text
	return json.Marshal(struct {
		Type Kind `json:"type"`
		plain
	}{KindText, plain(e)})
}

func (e Image) MarshalJSON() ([]byte, error) {
	type plain Image
	return json.Marshal(struct {
		Type Kind `json:"type"`
		plain
	}{KindImage, plain(e)})
}

func (e Laser) MarshalJSON() ([]byte, error) {
	type plain Laser
	return json.Marshal(struct {
		Type Kind `json:"type"`
		plain
	}{KindLaser, plain(e)})
}

// Decode parses one persisted element record. Laser records are rejected.
func Decode(data []byte) (Element, error) {
	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode element: %w", err)
	}

	var (
		el  Element
		err error
	)
	switch head.Type {
	case KindFreehand:
		el, err = decodeAs[Freehand](data)
	case KindHighlighter:
		el, err = decodeAs[Highlighter](data)
	case KindLine:
		el, err = decodeAs[Line](data)
	case KindRectangle:
		el, err = decodeAs[Rectangle](data)
	case KindCircle:
		el, err = decodeAs[Circle](data)
	case KindText:
		el, err = decodeAs[Text](data)
	case KindImage:
		el, err = decodeAs[Image](data)
	case KindLaser:
		return nil, ErrEphemeral
	default:
		return nil, fmt.Errorf("decode element: unknown type %q", head.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s element: %w", head.Type, err)
	}
	return el, nil
}

func decodeAs[T Element](data []byte) (Element, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// List is an ordered element sequence with a JSON form of one record per
// element.
type List []Element

func (l List) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Element(l))
}

func (l *List) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(List, 0, len(raws))
	for i, raw := range raws {
		el, err := Decode(raw)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, el)
	}
	*l = out
	return nil
}
