package model

import (
	"errors"
	"fmt"
)

// Node is a labelled element of the energy-system graph.
type Node interface {
	Label() string
	// Flows returns the flows owned by the node, inputs first.
	Flows() []*Flow
}

// Bus is a balancing node: inflows equal outflows in every timestep.
type Bus struct {
	Name string
}

func NewBus(label string) *Bus { return &Bus{Name: label} }

func (b *Bus) Label() string  { return b.Name }
func (b *Bus) Flows() []*Flow { return nil }

// Sink consumes from one bus (demand or excess).
type Sink struct {
	Name  string
	Input *Flow
}

func NewSink(label, bus string, f *Flow) *Sink {
	if f == nil {
		f = &Flow{}
	}
	f.From, f.To = bus, label
	return &Sink{Name: label, Input: f}
}

func (s *Sink) Label() string  { return s.Name }
func (s *Sink) Flows() []*Flow { return []*Flow{s.Input} }

// Source feeds one bus (generation or a resource).
type Source struct {
	Name   string
	Output *Flow
}

func NewSource(label, bus string, f *Flow) *Source {
	if f == nil {
		f = &Flow{}
	}
	f.From, f.To = label, bus
	return &Source{Name: label, Output: f}
}

func (s *Source) Label() string  { return s.Name }
func (s *Source) Flows() []*Flow { return []*Flow{s.Output} }

// Converter links input and output flows through conversion factors keyed
// by bus label: flow_in * factor[out] == flow_out * factor[in].
type Converter struct {
	Name              string
	Inputs            []*Flow
	Outputs           []*Flow
	ConversionFactors map[string]float64
}

func NewConverter(label string) *Converter {
	return &Converter{Name: label, ConversionFactors: map[string]float64{}}
}

// AddInput connects bus -> converter with the given conversion factor.
func (c *Converter) AddInput(bus string, f *Flow, factor float64) *Converter {
	if f == nil {
		f = &Flow{}
	}
	f.From, f.To = bus, c.Name
	c.Inputs = append(c.Inputs, f)
	c.ConversionFactors[bus] = factor
	return c
}

// AddOutput connects converter -> bus with the given conversion factor.
func (c *Converter) AddOutput(bus string, f *Flow, factor float64) *Converter {
	if f == nil {
		f = &Flow{}
	}
	f.From, f.To = c.Name, bus
	c.Outputs = append(c.Outputs, f)
	c.ConversionFactors[bus] = factor
	return c
}

func (c *Converter) Label() string { return c.Name }

func (c *Converter) Flows() []*Flow {
	out := make([]*Flow, 0, len(c.Inputs)+len(c.Outputs))
	out = append(out, c.Inputs...)
	return append(out, c.Outputs...)
}

// Factor returns the conversion factor of the flow attached to bus, 1 for
// converters assembled without AddInput/AddOutput.
func (c *Converter) Factor(bus string) float64 {
	if v, ok := c.ConversionFactors[bus]; ok {
		return v
	}
	return 1
}

// Storage is a generic storage with an investable energy capacity.
// Units:
// - LossRate: fraction of the content lost per hour
// - InitialLevel: fraction of the capacity at t=0 (nil leaves it free)
// - InvestRelation*: MW of charge/discharge power per MWh of capacity
// - InflowConversion/OutflowConversion: 0..1
type Storage struct {
	Name   string
	Input  *Flow
	Output *Flow

	NominalCapacity *float64
	Investment      *Investment

	LossRate                     float64
	InitialLevel                 *float64
	InvestRelationInputCapacity  *float64
	InvestRelationOutputCapacity *float64
	InflowConversion             float64
	OutflowConversion            float64
	Balanced                     bool
}

// NewStorage wires the charge flow from inBus and the discharge flow to
// outBus. Conversion factors default to 1 and the storage is balanced.
func NewStorage(label, inBus, outBus string, in, out *Flow) *Storage {
	if in == nil {
		in = &Flow{}
	}
	if out == nil {
		out = &Flow{}
	}
	in.From, in.To = inBus, label
	out.From, out.To = label, outBus
	return &Storage{
		Name:              label,
		Input:             in,
		Output:            out,
		InflowConversion:  1,
		OutflowConversion: 1,
		Balanced:          true,
	}
}

func (s *Storage) Label() string  { return s.Name }
func (s *Storage) Flows() []*Flow { return []*Flow{s.Input, s.Output} }

// Prepare gives the charge and discharge flows an investment when an invest
// relation ties them to the storage capacity and none was configured. The
// added investment has no costs of its own.
func (s *Storage) Prepare() {
	if s.Investment == nil {
		return
	}
	if s.InvestRelationInputCapacity != nil && s.Input.Investment == nil {
		s.Input.Investment = &Investment{}
	}
	if s.InvestRelationOutputCapacity != nil && s.Output.Investment == nil {
		s.Output.Investment = &Investment{}
	}
}

func (s *Storage) validate() error {
	if s.Investment == nil && s.NominalCapacity == nil {
		return errors.New("storage needs a nominal capacity or an investment")
	}
	if s.Investment != nil && s.NominalCapacity != nil {
		return errors.New("nominal capacity and investment are mutually exclusive")
	}
	if s.NominalCapacity != nil && *s.NominalCapacity < 0 {
		return errors.New("nominal capacity must be >= 0")
	}
	if s.Investment != nil {
		if err := s.Investment.Validate(); err != nil {
			return err
		}
	}
	if s.LossRate < 0 || s.LossRate >= 1 {
		return errors.New("loss rate must be in [0, 1)")
	}
	if s.InflowConversion <= 0 || s.InflowConversion > 1 {
		return errors.New("inflow conversion factor must be in (0, 1]")
	}
	if s.OutflowConversion <= 0 || s.OutflowConversion > 1 {
		return errors.New("outflow conversion factor must be in (0, 1]")
	}
	if s.InitialLevel != nil && (*s.InitialLevel < 0 || *s.InitialLevel > 1) {
		return errors.New("initial storage level must be in [0, 1]")
	}
	for name, r := range map[string]*float64{
		"input":  s.InvestRelationInputCapacity,
		"output": s.InvestRelationOutputCapacity,
	} {
		if r == nil {
			continue
		}
		if *r <= 0 {
			return fmt.Errorf("invest relation %s/capacity must be > 0", name)
		}
		if s.Investment == nil {
			return fmt.Errorf("invest relation %s/capacity requires a storage investment", name)
		}
	}
	return nil
}
