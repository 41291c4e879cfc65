package induce

import (
	"mlem2/internal/blocks"
	"mlem2/internal/caseset"
)

// condition collects the values selected for one attribute of a draft rule.
// Only numeric attributes collect more than one.
type condition struct {
	attr   int
	values []blocks.Value
	blocks []caseset.Set
}

func (c *condition) has(v blocks.Value) bool {
	for _, x := range c.values {
		if x == v {
			return true
		}
	}
	return false
}

// bound is the range implied by every interval selected so far.
func (c *condition) bound() blocks.Interval {
	iv := c.values[0].Interval
	for _, v := range c.values[1:] {
		iv = iv.Tighten(v.Interval)
	}
	return iv
}

func (c *condition) block() caseset.Set {
	s := c.blocks[0]
	for _, b := range c.blocks[1:] {
		s = s.Intersect(b)
	}
	return s
}

// tighten collapses the selected intervals into their intersection.
func (c *condition) tighten() (blocks.Value, caseset.Set) {
	if len(c.values) == 1 {
		return c.values[0], c.blocks[0]
	}
	iv := c.bound()
	return blocks.Range(iv.Low, iv.High), c.block()
}

// draft is the rule under construction: conditions in order of their
// attribute's first selection, and the running intersection of their blocks.
type draft struct {
	conds   []*condition
	running caseset.Set
	started bool
}

func (r *draft) condition(attr int) *condition {
	for _, c := range r.conds {
		if c.attr == attr {
			return c
		}
	}
	return nil
}

func (r *draft) add(c candidate) {
	if r.started {
		r.running = r.running.Intersect(c.block)
	} else {
		r.running, r.started = c.block, true
	}
	if cond := r.condition(c.attr); cond != nil {
		cond.values = append(cond.values, c.value)
		cond.blocks = append(cond.blocks, c.block)
		return
	}
	r.conds = append(r.conds, &condition{
		attr:   c.attr,
		values: []blocks.Value{c.value},
		blocks: []caseset.Set{c.block},
	})
}

// covered intersects the blocks of every condition except skip (-1 for none).
func covered(conds []*condition, skip int) caseset.Set {
	var (
		s       caseset.Set
		started bool
	)
	for i, c := range conds {
		if i == skip {
			continue
		}
		if !started {
			s, started = c.block(), true
			continue
		}
		s = s.Intersect(c.block())
	}
	return s
}
