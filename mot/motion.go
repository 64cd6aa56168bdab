package mot

// Motion is flat form of record: bone indices in file order
// and channels in tag order.
type Motion struct {
	Bones    []uint16  `json:"bones" yaml:"bones"`
	Channels []Channel `json:"channels" yaml:"channels"`
}

// FrameCount is highest key frame + 1, as stored in record header
func (m *Motion) FrameCount() int {
	return framesCount(m.Channels)
}

func framesCount(channels []Channel) int {
	max := 0
	for i := range channels {
		if f := int(channels[i].MaxFrame()); f > max {
			max = f
		}
	}
	return max + 1
}

func (m *Motion) Snapshot() {
	for i := range m.Channels {
		m.Channels[i] = m.Channels[i].Snapshot()
	}
}

// Stats counts channels per tag
func (m *Motion) Stats() map[Tag]int {
	stats := make(map[Tag]int, 4)
	for i := range m.Channels {
		stats[m.Channels[i].Tag]++
	}
	return stats
}

func (m *Motion) Equal(o *Motion) bool {
	if len(m.Bones) != len(o.Bones) || len(m.Channels) != len(o.Channels) {
		return false
	}
	for i := range m.Bones {
		if m.Bones[i] != o.Bones[i] {
			return false
		}
	}
	for i := range m.Channels {
		if !m.Channels[i].Equal(o.Channels[i]) {
			return false
		}
	}
	return true
}
