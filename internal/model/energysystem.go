package model

import (
	"errors"
	"fmt"
	"time"
)

// EnergySystem is the graph handed to the optimiser: an hourly time index
// plus the nodes in insertion order.
type EnergySystem struct {
	Timeindex []time.Time

	nodes   []Node
	byLabel map[string]Node
}

func NewEnergySystem(index []time.Time) *EnergySystem {
	return &EnergySystem{Timeindex: index, byLabel: map[string]Node{}}
}

// Add registers nodes. Labels must be unique.
func (es *EnergySystem) Add(nodes ...Node) error {
	for _, n := range nodes {
		if n == nil {
			return errors.New("energy system: nil node")
		}
		label := n.Label()
		if label == "" {
			return errors.New("energy system: node without label")
		}
		if _, dup := es.byLabel[label]; dup {
			return fmt.Errorf("energy system: duplicate label %q", label)
		}
		es.byLabel[label] = n
		es.nodes = append(es.nodes, n)
	}
	return nil
}

func (es *EnergySystem) Node(label string) (Node, bool) {
	n, ok := es.byLabel[label]
	return n, ok
}

func (es *EnergySystem) Nodes() []Node { return es.nodes }

// Steps is the number of timesteps.
func (es *EnergySystem) Steps() int { return len(es.Timeindex) }

// Flows returns every flow of the graph in node insertion order.
func (es *EnergySystem) Flows() []*Flow {
	var out []*Flow
	for _, n := range es.nodes {
		out = append(out, n.Flows()...)
	}
	return out
}

// Buses returns the bus nodes in insertion order.
func (es *EnergySystem) Buses() []*Bus {
	var out []*Bus
	for _, n := range es.nodes {
		if b, ok := n.(*Bus); ok {
			out = append(out, b)
		}
	}
	return out
}

// Storages returns the storage nodes in insertion order.
func (es *EnergySystem) Storages() []*Storage {
	var out []*Storage
	for _, n := range es.nodes {
		if s, ok := n.(*Storage); ok {
			out = append(out, s)
		}
	}
	return out
}

// Converters returns the converter nodes in insertion order.
func (es *EnergySystem) Converters() []*Converter {
	var out []*Converter
	for _, n := range es.nodes {
		if c, ok := n.(*Converter); ok {
			out = append(out, c)
		}
	}
	return out
}

// Validate checks the graph before it is formulated: every flow joins a
// bus and a component, profiles match the time index and parameters are in
// range. Storages are prepared (implicit flow investments) on the way.
func (es *EnergySystem) Validate() error {
	if es == nil {
		return errors.New("energy system is nil")
	}
	if len(es.Timeindex) == 0 {
		return errors.New("energy system has an empty timeindex")
	}
	steps := len(es.Timeindex)
	for _, n := range es.nodes {
		switch x := n.(type) {
		case *Converter:
			if len(x.Inputs) == 0 || len(x.Outputs) == 0 {
				return fmt.Errorf("converter %q needs at least one input and one output", x.Name)
			}
			for bus, v := range x.ConversionFactors {
				if v <= 0 {
					return fmt.Errorf("converter %q: conversion factor for %q must be > 0", x.Name, bus)
				}
			}
		case *Storage:
			if err := x.validate(); err != nil {
				return fmt.Errorf("storage %q: %w", x.Name, err)
			}
			x.Prepare()
		}
	}
	for _, f := range es.Flows() {
		from, ok := es.byLabel[f.From]
		if !ok {
			return fmt.Errorf("flow %s: unknown node %q", f, f.From)
		}
		to, ok := es.byLabel[f.To]
		if !ok {
			return fmt.Errorf("flow %s: unknown node %q", f, f.To)
		}
		_, fromBus := from.(*Bus)
		_, toBus := to.(*Bus)
		if fromBus == toBus {
			return fmt.Errorf("flow %s: exactly one end must be a bus", f)
		}
		if err := f.validate(steps); err != nil {
			return err
		}
	}
	return nil
}
