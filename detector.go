package logids

import (
	"sort"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/scraperwall/logids/config"
	"github.com/scraperwall/logids/data"
)

// Frequencies maps addresses to the number of times they occurred.
// Entries keep the order in which their address was first seen.
// A Frequencies value is never modified after it has been created
type Frequencies struct {
	counts *linkedhashmap.Map
}

func newFrequencies() *Frequencies {
	return &Frequencies{
		counts: linkedhashmap.New(),
	}
}

// Count totals the occurrences of every address in ips
func Count(ips []string) *Frequencies {
	f := newFrequencies()

	for _, ip := range ips {
		n := 0
		if v, ok := f.counts.Get(ip); ok {
			n = v.(int)
		}
		f.counts.Put(ip, n+1)
	}

	return f
}

// Detect counts ips and returns only the addresses that occurred at least threshold times
func Detect(ips []string, threshold int) *Frequencies {
	return Count(ips).Suspicious(threshold)
}

// Suspicious returns the entries whose count is greater than or equal to threshold
func (f *Frequencies) Suspicious(threshold int) *Frequencies {
	return f.filter(func(ip string, count int) bool {
		return count >= threshold
	})
}

// Without returns a copy of f that lacks every address for which drop returns true
func (f *Frequencies) Without(drop func(ip string) bool) *Frequencies {
	return f.filter(func(ip string, _ int) bool {
		return !drop(ip)
	})
}

func (f *Frequencies) filter(keep func(ip string, count int) bool) *Frequencies {
	res := newFrequencies()
	if f == nil {
		return res
	}

	iter := f.counts.Iterator()
	for iter.Next() {
		ip := iter.Key().(string)
		count := iter.Value().(int)

		if keep(ip, count) {
			res.counts.Put(ip, count)
		}
	}

	return res
}

// Get returns the count for ip and whether ip is present at all
func (f *Frequencies) Get(ip string) (int, bool) {
	if f == nil {
		return 0, false
	}

	v, ok := f.counts.Get(ip)
	if !ok {
		return 0, false
	}

	return v.(int), true
}

// Size returns the number of distinct addresses
func (f *Frequencies) Size() int {
	if f == nil {
		return 0
	}

	return f.counts.Size()
}

// Total returns the sum of all counts
func (f *Frequencies) Total() int {
	total := 0

	for _, e := range f.Entries() {
		total += e.Count
	}

	return total
}

// Entries returns all entries in the order their address was first seen
func (f *Frequencies) Entries() []data.Entry {
	if f == nil {
		return []data.Entry{}
	}

	entries := make([]data.Entry, 0, f.counts.Size())

	iter := f.counts.Iterator()
	for iter.Next() {
		entries = append(entries, data.Entry{
			IP:    iter.Key().(string),
			Count: iter.Value().(int),
		})
	}

	return entries
}

// Ordered returns all entries in the given report order.
// config.OrderCount sorts by descending count, config.OrderIP by address; ties and
// config.OrderSeen keep first seen order
func (f *Frequencies) Ordered(order string) []data.Entry {
	entries := f.Entries()

	switch order {
	case config.OrderCount:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Count > entries[j].Count
		})
	case config.OrderIP:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].IP < entries[j].IP
		})
	}

	return entries
}
