package tool

import (
	"context"
	"encoding/json"
	"fmt"
)

// Capability is one invocable unit of work. Implementations must not panic
// or return errors out of band: every failure is reported as a Result with
// StatusError.
type Capability interface {
	Invoke(ctx context.Context, in Input) Result
}

// CapabilityFunc adapts a plain function to Capability.
type CapabilityFunc func(ctx context.Context, in Input) Result

// Invoke calls f.
func (f CapabilityFunc) Invoke(ctx context.Context, in Input) Result {
	return f(ctx, in)
}

// Describer is implemented by capabilities that can describe themselves to
// listings and protocol adapters.
type Describer interface {
	Description() string
	Parameters() map[string]any
}

// Descriptor is the public description of a registered tool.
type Descriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Guard wraps c so that a panic inside Invoke becomes an error Result
// attributed to name. It also stamps the tool name on results that left
// it empty and normalizes malformed statuses.
func Guard(name string, c Capability) Capability {
	if g, ok := c.(*guarded); ok && g.name == name {
		return g
	}
	return &guarded{name: name, inner: c}
}

type guarded struct {
	name  string
	inner Capability
}

func (g *guarded) Invoke(ctx context.Context, in Input) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Failure(g.name, fmt.Errorf("panic in %s: %v", g.name, r))
		}
	}()
	res = g.inner.Invoke(ctx, in)
	if res.Tool == "" {
		res.Tool = g.name
	}
	return normalize(res)
}

// normalize enforces the Result contract at the tool boundary. An empty
// status means success unless an error message was set. A success that
// carries an error message, or any status other than success and error,
// becomes an error result.
func normalize(res Result) Result {
	switch res.Status {
	case StatusSuccess:
		if res.Error != "" {
			res.Status = StatusError
		}
	case "":
		res.Status = StatusSuccess
		if res.Error != "" {
			res.Status = StatusError
		}
	case StatusError:
	default:
		if res.Error == "" {
			res.Error = fmt.Sprintf("unknown status %q", res.Status)
		}
		res.Status = StatusError
	}
	if res.Status == StatusError && res.Error == "" {
		res.Error = "unknown error"
	}
	return res
}

func (g *guarded) Description() string {
	if d, ok := g.inner.(Describer); ok {
		return d.Description()
	}
	return ""
}

func (g *guarded) Parameters() map[string]any {
	if d, ok := g.inner.(Describer); ok {
		return d.Parameters()
	}
	return map[string]any{"type": "object"}
}

// Input is the structured argument set handed to a capability.
type Input map[string]any

// String returns the string stored under key, or "" if absent or not a string.
func (in Input) String(key string) string {
	if v, ok := in[key].(string); ok {
		return v
	}
	return ""
}

// Decode copies the input into v through its JSON form, so v can be any
// struct with json tags.
func (in Input) Decode(v any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode input: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode input: %w", err)
	}
	return nil
}

// InputFromJSON parses a JSON object into an Input. An empty string yields
// an empty Input.
func InputFromJSON(raw string) (Input, error) {
	in := Input{}
	if raw == "" {
		return in, nil
	}
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, fmt.Errorf("input must be a JSON object: %w", err)
	}
	return in, nil
}

// DecodePayload converts a result payload into v. Payloads that already
// have v's type are assigned directly; anything else goes through JSON.
func DecodePayload[T any](payload any) (T, error) {
	var out T
	if payload == nil {
		return out, fmt.Errorf("empty payload")
	}
	if v, ok := payload.(T); ok {
		return v, nil
	}
	if p, ok := payload.(*T); ok && p != nil {
		return *p, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return out, fmt.Errorf("failed to encode payload: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("unexpected payload shape: %w", err)
	}
	return out, nil
}
