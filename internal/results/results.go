// Package results holds the solved flows and storage contents of one
// scenario and derives the summary tables that get exported.
package results

import (
	"fmt"
	"time"
)

// FlowKey identifies a flow by its end points.
type FlowKey struct {
	From string
	To   string
}

func (k FlowKey) String() string { return fmt.Sprintf("(%s, %s)", k.From, k.To) }

// FlowResult is the hourly flow in MW (= MWh per step) and, for investment
// flows, the newly built capacity.
type FlowResult struct {
	Sequence []float64
	Invest   *float64
}

// StorageResult is the hourly content (MWh) and the built energy capacity.
type StorageResult struct {
	Content []float64
	Invest  float64
}

// Results is the outcome of one solve.
type Results struct {
	Timeindex []time.Time
	Flows     map[FlowKey]FlowResult
	Storages  map[string]StorageResult
	Objective float64

	order []FlowKey
}

func New(index []time.Time) *Results {
	return &Results{
		Timeindex: index,
		Flows:     map[FlowKey]FlowResult{},
		Storages:  map[string]StorageResult{},
	}
}

// AddFlow records a flow, keeping insertion order for exports.
func (r *Results) AddFlow(key FlowKey, fr FlowResult) {
	if _, ok := r.Flows[key]; !ok {
		r.order = append(r.order, key)
	}
	r.Flows[key] = fr
}

// Keys returns the flow keys in insertion order.
func (r *Results) Keys() []FlowKey { return r.order }

func (r *Results) Flow(from, to string) (FlowResult, bool) {
	fr, ok := r.Flows[FlowKey{From: from, To: to}]
	return fr, ok
}

// Sequence returns the hourly values of a flow, nil when unknown.
func (r *Results) Sequence(from, to string) []float64 {
	fr, ok := r.Flow(from, to)
	if !ok {
		return nil
	}
	return fr.Sequence
}

// Invest returns the capacity built on a flow, 0 when it has no investment.
func (r *Results) Invest(from, to string) float64 {
	fr, ok := r.Flow(from, to)
	if !ok || fr.Invest == nil {
		return 0
	}
	return *fr.Invest
}

// Sum returns the energy carried by a flow over the horizon in MWh.
func (r *Results) Sum(from, to string) float64 {
	var s float64
	for _, v := range r.Sequence(from, to) {
		s += v
	}
	return s
}

// StorageInvest returns the energy capacity built for a storage.
func (r *Results) StorageInvest(label string) float64 {
	return r.Storages[label].Invest
}

// NodeView gathers every flow touching a node, the equivalent of a node
// view over the raw results.
type NodeView struct {
	Label   string
	Keys    []FlowKey
	Flows   map[FlowKey]FlowResult
	Storage *StorageResult
}

// Node returns the view of a node, or false when no flow touches it.
func (r *Results) Node(label string) (NodeView, bool) {
	v := NodeView{Label: label, Flows: map[FlowKey]FlowResult{}}
	for _, k := range r.order {
		if k.From == label || k.To == label {
			v.Keys = append(v.Keys, k)
			v.Flows[k] = r.Flows[k]
		}
	}
	if s, ok := r.Storages[label]; ok {
		v.Storage = &s
	}
	if len(v.Keys) == 0 && v.Storage == nil {
		return NodeView{}, false
	}
	return v, true
}

// Inflow sums all flows into the node per timestep.
func (v NodeView) Inflow() []float64 { return v.sum(func(k FlowKey) bool { return k.To == v.Label }) }

// Outflow sums all flows out of the node per timestep.
func (v NodeView) Outflow() []float64 { return v.sum(func(k FlowKey) bool { return k.From == v.Label }) }

func (v NodeView) sum(match func(FlowKey) bool) []float64 {
	var out []float64
	for _, k := range v.Keys {
		if !match(k) {
			continue
		}
		seq := v.Flows[k].Sequence
		if out == nil {
			out = make([]float64, len(seq))
		}
		for i := range out {
			if i < len(seq) {
				out[i] += seq[i]
			}
		}
	}
	return out
}
