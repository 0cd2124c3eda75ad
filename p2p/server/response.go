package server

import (
	"github.com/spacemeshos/go-scale"
)

const (
	maxResponseData = 89128960 // 85 MiB
	maxErrorLength  = 1024
)

// Response is a server response.
type Response struct {
	Data  []byte
	Error string
}

// EncodeScale implements scale codec interface.
func (t *Response) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeByteSliceWithLimit(enc, t.Data, maxResponseData)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStringWithLimit(enc, t.Error, maxErrorLength)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeScale implements scale codec interface.
func (t *Response) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeByteSliceWithLimit(dec, maxResponseData)
		if err != nil {
			return total, err
		}
		total += n
		t.Data = field
	}
	{
		field, n, err := scale.DecodeStringWithLimit(dec, maxErrorLength)
		if err != nil {
			return total, err
		}
		total += n
		t.Error = field
	}
	return total, nil
}
