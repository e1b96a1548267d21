package experiment

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/glide/internal/control"
	"github.com/san-kum/glide/internal/metrics"
	"github.com/san-kum/glide/internal/sim"
)

// Registry resolves profile specs of the form "name" or "name:a,b,c".
type Registry struct {
	profiles map[string]func(args []float64) (control.Profile, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		profiles: make(map[string]func([]float64) (control.Profile, error)),
	}

	r.profiles["none"] = func(args []float64) (control.Profile, error) {
		return control.None(), nil
	}
	r.profiles["constant"] = func(args []float64) (control.Profile, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("constant takes 1 argument, got %d", len(args))
		}
		return control.Constant(args[0]), nil
	}
	r.profiles["sine"] = func(args []float64) (control.Profile, error) {
		if len(args) < 2 || len(args) > 4 {
			return nil, fmt.Errorf("sine takes amplitude,frequency[,phase[,offset]]")
		}
		s := control.Sine{Amplitude: args[0], Frequency: args[1]}
		if len(args) > 2 {
			s.Phase = args[2]
		}
		if len(args) > 3 {
			s.Offset = args[3]
		}
		return s, nil
	}
	r.profiles["square"] = func(args []float64) (control.Profile, error) {
		if len(args) != 3 {
			return nil, fmt.Errorf("square takes high,low,half_period")
		}
		return control.SquareWave{High: args[0], Low: args[1], HalfPeriod: args[2]}, nil
	}
	r.profiles["winch"] = func(args []float64) (control.Profile, error) {
		return control.DefaultWinch(), nil
	}
	r.profiles["current"] = func(args []float64) (control.Profile, error) {
		return control.DefaultCurrent(), nil
	}

	return r
}

// Profile parses spec, e.g. "sine:8,0.2" or "constant:-0.5".
func (r *Registry) Profile(spec string) (control.Profile, error) {
	name, rest, _ := strings.Cut(strings.TrimSpace(spec), ":")
	name = strings.ToLower(name)

	fn, ok := r.profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile: %s", name)
	}

	var args []float64
	if rest != "" {
		for _, field := range strings.Split(rest, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("profile %s: %w", name, err)
			}
			args = append(args, v)
		}
	}
	return fn(args)
}

func (r *Registry) ListProfiles() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []sim.Metric {
	return []sim.Metric{
		metrics.NewEnergyDrift(),
	}
}
