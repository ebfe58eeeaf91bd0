package oracle

import (
	"context"
	"time"

	"github.com/matzehuels/repolens/pkg/observability"
)

type observed struct {
	Oracle
	provider string
}

// Observed reports every call of o through [observability.Oracle] under
// the given provider label.
func Observed(o Oracle, provider string) Oracle {
	return &observed{Oracle: o, provider: provider}
}

func (o *observed) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := o.Oracle.Complete(ctx, prompt)
	observability.Oracle().OnOracleCall(ctx, o.provider, len(prompt), len(out), time.Since(start), err)
	return out, err
}
