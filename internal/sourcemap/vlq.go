package sourcemap

import (
	"errors"
	"fmt"
)

const (
	vlqBaseShift       = 5
	vlqBase            = 1 << vlqBaseShift
	vlqBaseMask        = vlqBase - 1
	vlqContinuationBit = vlqBase
)

var errInvalidVLQ = errors.New("invalid base64 VLQ data")

var base64Values = func() [256]int8 {
	var table [256]int8
	for i := range table {
		table[i] = -1
	}
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	for i := 0; i < len(alphabet); i++ {
		table[alphabet[i]] = int8(i)
	}
	return table
}()

// decodeSegment decodes one comma-separated mapping segment into its (relative) field values.
func decodeSegment(segment string) ([]int, error) {
	fields := make([]int, 0, 5)
	value, shift := 0, 0

	for i := 0; i < len(segment); i++ {
		digit := base64Values[segment[i]]
		if digit < 0 {
			return nil, fmt.Errorf("%w: unexpected character %q", errInvalidVLQ, segment[i])
		}

		value += int(digit&vlqBaseMask) << shift
		if int(digit)&vlqContinuationBit != 0 {
			shift += vlqBaseShift
			continue
		}

		// The least significant bit carries the sign.
		negative := value&1 == 1
		value >>= 1
		if negative {
			value = -value
		}
		fields = append(fields, value)
		value, shift = 0, 0
	}

	if shift != 0 {
		return nil, fmt.Errorf("%w: truncated segment %q", errInvalidVLQ, segment)
	}
	return fields, nil
}
