package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a task duration. In scene files it is written either as
// a number of seconds or as a Go duration string such as "1500ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	switch node.ShortTag() {
	case "!!int", "!!float":
		var secs float64
		if err := node.Decode(&secs); err != nil {
			return err
		}
		*d = Duration(secs * float64(time.Second))
		return nil
	case "!!str":
		parsed, err := time.ParseDuration(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*d = Duration(parsed)
		return nil
	default:
		return fmt.Errorf("line %d: duration must be a number or a string", node.Line)
	}
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func decodeYAML(src []byte, sc *Scene) error {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(sc); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
