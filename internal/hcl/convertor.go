package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/circles/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

var numberList = cty.List(cty.Number)

// decodeExpr evaluates expr, converts the value to ty and decodes it into
// target. It reports false without touching target when the value is null,
// which is how gohcl represents an omitted optional attribute.
func decodeExpr(ctx context.Context, expr hcl.Expression, ty cty.Type, target any) (bool, error) {
	if expr == nil {
		return false, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return false, diags
	}
	if val.IsNull() {
		return false, nil
	}
	if !val.IsWhollyKnown() {
		return false, fmt.Errorf("value must be known at load time")
	}

	converted, err := convert.Convert(val, ty)
	if err != nil {
		return false, fmt.Errorf("cannot convert %s to required type %s: %w", val.Type().FriendlyName(), ty.FriendlyName(), err)
	}
	if !val.Type().Equals(converted.Type()) {
		ctxlog.FromContext(ctx).Debug("Implicitly converted value type.",
			"from", val.Type().FriendlyName(),
			"to", converted.Type().FriendlyName(),
		)
	}
	if err := gocty.FromCtyValue(converted, target); err != nil {
		return false, err
	}
	return true, nil
}
