package scene

import (
	"fmt"
	"math/big"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

func decodeHCL(filename string, src []byte, sc *Scene) error {
	dir, err := filepath.Abs(filepath.Dir(filename))
	if err != nil {
		return err
	}
	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"directory": cty.StringVal(dir),
		},
	}

	file, diags := hclsyntax.ParseConfig(src, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return diags
	}

	schema := &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{
			{
				Name: "name",
			},
			{
				Name: "frame_rate",
			},
			{
				Name: "max_frames",
			},
		},
		Blocks: []hcl.BlockHeaderSchema{
			{
				Type:       "task",
				LabelNames: []string{"name"},
			},
		},
	}

	content, diags := file.Body.Content(schema)
	if diags.HasErrors() {
		return diags
	}

	for _, a := range content.Attributes {
		switch a.Name {
		case "name":
			sc.Name, diags = asString(ctx, a)
		case "frame_rate":
			sc.FrameRate, diags = asInt(ctx, a)
		case "max_frames":
			sc.MaxFrames, diags = asInt(ctx, a)
		}
		if diags.HasErrors() {
			return diags
		}
	}

	for _, b := range content.Blocks {
		task, diags := decodeTaskBlock(ctx, b)
		if diags.HasErrors() {
			return diags
		}
		sc.Tasks = append(sc.Tasks, task)
	}

	return nil
}

func decodeTaskBlock(ctx *hcl.EvalContext, block *hcl.Block) (Task, hcl.Diagnostics) {
	task := Task{
		Name: block.Labels[0],
		Kind: KindRun,
	}

	schema := &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{
			{
				Name: "kind",
			},
			{
				Name: "duration",
			},
			{
				Name: "script",
			},
			{
				Name: "script_file",
			},
		},
	}

	content, diags := block.Body.Content(schema)
	if diags.HasErrors() {
		return task, diags
	}

	for _, a := range content.Attributes {
		switch a.Name {
		case "kind":
			var kind string
			kind, diags = asString(ctx, a)
			task.Kind = Kind(kind)
		case "duration":
			task.Duration, diags = decodeDuration(ctx, a)
		case "script":
			task.Script, diags = asString(ctx, a)
		case "script_file":
			task.ScriptFile, diags = asString(ctx, a)
		}
		if diags.HasErrors() {
			return task, diags
		}
	}

	return task, diags
}

// decodeDuration accepts a number of seconds or a Go duration string.
func decodeDuration(ctx *hcl.EvalContext, attr *hcl.Attribute) (Duration, hcl.Diagnostics) {
	v, diags := attr.Expr.Value(ctx)
	if diags.HasErrors() {
		return 0, diags
	}

	switch v.Type() {
	case cty.Number:
		secs, _ := v.AsBigFloat().Float64()
		return Duration(secs * float64(time.Second)), nil
	case cty.String:
		d, err := time.ParseDuration(v.AsString())
		if err != nil {
			return 0, attrError(attr, fmt.Sprintf("Field %s is not a valid duration: %s.", attr.Name, err))
		}
		return Duration(d), nil
	default:
		return 0, attrError(attr, fmt.Sprintf("Field %s should be a number of seconds or a duration string.", attr.Name))
	}
}

func asString(ctx *hcl.EvalContext, attr *hcl.Attribute) (string, hcl.Diagnostics) {
	v, diags := attr.Expr.Value(ctx)
	if diags.HasErrors() {
		return "", diags
	}

	if v.IsNull() || v.Type() != cty.String {
		return "", attrError(attr, fmt.Sprintf("Field %s should be string.", attr.Name))
	}

	return v.AsString(), nil
}

func asInt(ctx *hcl.EvalContext, attr *hcl.Attribute) (int, hcl.Diagnostics) {
	v, diags := attr.Expr.Value(ctx)
	if diags.HasErrors() {
		return 0, diags
	}

	if v.IsNull() || v.Type() != cty.Number || !v.AsBigFloat().IsInt() {
		return 0, attrError(attr, fmt.Sprintf("Field %s should be int.", attr.Name))
	}

	bi, accuracy := v.AsBigFloat().Int64()
	if accuracy != big.Exact {
		return 0, attrError(attr, fmt.Sprintf("Field %s value could not be converted to int.", attr.Name))
	}

	return int(bi), nil
}

func attrError(attr *hcl.Attribute, summary string) hcl.Diagnostics {
	r := attr.Range
	return hcl.Diagnostics{
		{
			Subject:  &r,
			Severity: hcl.DiagError,
			Summary:  summary,
		},
	}
}
