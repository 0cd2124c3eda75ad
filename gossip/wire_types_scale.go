package gossip

import (
	"github.com/spacemeshos/go-scale"

	"github.com/timotree3/holochain/common/types"
	"github.com/timotree3/holochain/dht/arc"
)

func (t *ArcSet) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, t.Arcs, maxArcs)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeBool(enc, t.Oldest != nil)
		if err != nil {
			return total, err
		}
		total += n
	}
	if t.Oldest != nil {
		n, err := scale.EncodeCompact64(enc, uint64(*t.Oldest))
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (t *ArcSet) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeStructSliceWithLimit[arc.Arc](dec, maxArcs)
		if err != nil {
			return total, err
		}
		total += n
		t.Arcs = field
	}
	{
		some, n, err := scale.DecodeBool(dec)
		if err != nil {
			return total, err
		}
		total += n
		if some {
			field, n, err := scale.DecodeCompact64(dec)
			if err != nil {
				return total, err
			}
			total += n
			oldest := types.Timestamp(field)
			t.Oldest = &oldest
		}
	}
	return total, nil
}

func (t *AgentsRequest) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, t.Overlap, maxArcs)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeByteSliceWithLimit(enc, t.Filter, maxFilterSize)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (t *AgentsRequest) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeStructSliceWithLimit[arc.Arc](dec, maxArcs)
		if err != nil {
			return total, err
		}
		total += n
		t.Overlap = field
	}
	{
		field, n, err := scale.DecodeByteSliceWithLimit(dec, maxFilterSize)
		if err != nil {
			return total, err
		}
		total += n
		t.Filter = field
	}
	return total, nil
}

func (t *AgentsResponse) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeBool(enc, t.NoOverlap)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, t.Missing, maxKeys)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeByteSliceWithLimit(enc, t.Filter, maxFilterSize)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (t *AgentsResponse) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeBool(dec)
		if err != nil {
			return total, err
		}
		total += n
		t.NoOverlap = field
	}
	{
		field, n, err := scale.DecodeStructSliceWithLimit[types.AgentKey](dec, maxKeys)
		if err != nil {
			return total, err
		}
		total += n
		t.Missing = field
	}
	{
		field, n, err := scale.DecodeByteSliceWithLimit(dec, maxFilterSize)
		if err != nil {
			return total, err
		}
		total += n
		t.Filter = field
	}
	return total, nil
}

func (t *OpsRequest) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, t.Overlap, maxArcs)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := encodeOutcome(enc, t.Outcome)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (t *OpsRequest) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeStructSliceWithLimit[arc.Arc](dec, maxArcs)
		if err != nil {
			return total, err
		}
		total += n
		t.Overlap = field
	}
	{
		field, n, err := decodeOutcome(dec)
		if err != nil {
			return total, err
		}
		total += n
		t.Outcome = field
	}
	return total, nil
}

func (t *OpsResponse) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, t.Missing, maxKeys)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := encodeOutcome(enc, t.Outcome)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (t *OpsResponse) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeStructSliceWithLimit[types.OpHash](dec, maxKeys)
		if err != nil {
			return total, err
		}
		total += n
		t.Missing = field
	}
	{
		field, n, err := decodeOutcome(dec)
		if err != nil {
			return total, err
		}
		total += n
		t.Outcome = field
	}
	return total, nil
}
