package mot

// Four tags per byte, channel i at bits (i%4)*2, lowest pair first.

func tagBytesCount(n int) int {
	return (n + 3) / 4
}

func PackTags(tags []Tag) []byte {
	out := make([]byte, tagBytesCount(len(tags)))
	for i, t := range tags {
		out[i/4] |= byte(t&3) << uint((i%4)*2)
	}
	return out
}

// UnpackTags reads n tags from b. Returns *DecodeError if b is too short.
func UnpackTags(b []byte, n int) ([]Tag, error) {
	need := tagBytesCount(n)
	if len(b) < need {
		return nil, &DecodeError{Field: "tags", Offset: 0, Need: need, Have: len(b)}
	}
	tags := make([]Tag, n)
	for i := range tags {
		tags[i] = Tag((b[i/4] >> uint((i%4)*2)) & 3)
	}
	return tags, nil
}

func channelTags(channels []Channel) []Tag {
	tags := make([]Tag, len(channels))
	for i := range channels {
		tags[i] = channels[i].Tag
	}
	return tags
}
