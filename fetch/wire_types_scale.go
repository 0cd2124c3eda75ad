package fetch

import (
	"github.com/spacemeshos/go-scale"

	"github.com/timotree3/holochain/common/types"
)

func (t *RequestBatch) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeByteArray(enc, t.ID[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, t.Ops, MaxBatchSize)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, t.Agents, MaxBatchSize)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (t *RequestBatch) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		n, err := scale.DecodeByteArray(dec, t.ID[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		field, n, err := scale.DecodeStructSliceWithLimit[types.OpHash](dec, MaxBatchSize)
		if err != nil {
			return total, err
		}
		total += n
		t.Ops = field
	}
	{
		field, n, err := scale.DecodeStructSliceWithLimit[types.AgentKey](dec, MaxBatchSize)
		if err != nil {
			return total, err
		}
		total += n
		t.Agents = field
	}
	return total, nil
}

func (t *ResponseBatch) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeByteArray(enc, t.ID[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, t.Ops, MaxBatchSize)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, t.Agents, MaxBatchSize)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (t *ResponseBatch) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		n, err := scale.DecodeByteArray(dec, t.ID[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		field, n, err := scale.DecodeStructSliceWithLimit[types.Op](dec, MaxBatchSize)
		if err != nil {
			return total, err
		}
		total += n
		t.Ops = field
	}
	{
		field, n, err := scale.DecodeStructSliceWithLimit[types.AgentInfo](dec, MaxBatchSize)
		if err != nil {
			return total, err
		}
		total += n
		t.Agents = field
	}
	return total, nil
}

func (t *PushBatch) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, t.Ops, MaxBatchSize)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, t.Agents, MaxBatchSize)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (t *PushBatch) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeStructSliceWithLimit[types.Op](dec, MaxBatchSize)
		if err != nil {
			return total, err
		}
		total += n
		t.Ops = field
	}
	{
		field, n, err := scale.DecodeStructSliceWithLimit[types.AgentInfo](dec, MaxBatchSize)
		if err != nil {
			return total, err
		}
		total += n
		t.Agents = field
	}
	return total, nil
}
