package framing

import "sort"

// Stats counts what the synchronizer has reported
type Stats struct {
	Frames     int
	Exceptions int
	NoiseBytes int
	FrameBytes int
	Overflows  int
	Timeouts   int
	ByAddress  map[byte]int // Frames per slave address
}

func newStats() Stats {
	return Stats{ByAddress: make(map[byte]int)}
}

func (st *Stats) recordFrame(seg Segment) {
	st.Frames++
	st.FrameBytes += len(seg.Data)
	if seg.Exception {
		st.Exceptions++
	}
	st.ByAddress[seg.Address]++
}

func (st Stats) clone() Stats {
	out := st
	out.ByAddress = make(map[byte]int, len(st.ByAddress))
	for k, v := range st.ByAddress {
		out.ByAddress[k] = v
	}
	return out
}

// Addresses returns the slave addresses seen, in ascending order
func (st Stats) Addresses() []byte {
	addrs := make([]byte, 0, len(st.ByAddress))
	for a := range st.ByAddress {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}
