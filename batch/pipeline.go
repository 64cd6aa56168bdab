package batch

import (
	"github.com/pkg/errors"

	"github.com/mogaika/diva_mot/mot"
)

type Pipeline struct {
	Qualifier *mot.Qualifier
	Names     mot.BoneNames
	Ranks     mot.Ranks
	Snapshot  bool
}

// Convert decodes record, qualifies it, puts bones into canonical
// order and encodes it back
func (p *Pipeline) Convert(name string, data []byte) ([]byte, error) {
	m, err := mot.Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to decode")
	}
	q := *p.Qualifier
	if q.Log != nil {
		q.Log = q.Log.WithField("file", name)
	}
	qm, _, err := q.Qualify(m)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to qualify")
	}
	if p.Snapshot {
		qm.Snapshot()
	}
	qm.SortCanonical(p.Names, p.Ranks)
	return qm.Marshal(p.Qualifier.Layout)
}
