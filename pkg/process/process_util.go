package process

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var ErrProcessNotFound = errors.New("process does not exist")

func Int64ToPidT(val int64) (Pid_t, error) {
	if val < 0 || val > math.MaxInt32 {
		return UnknownPID, fmt.Errorf("value %d is out of range of valid process ID values", val)
	}
	return Pid_t(val), nil
}

func StringToPidT(val string) (Pid_t, error) {
	parsed, parseErr := strconv.ParseInt(val, 10, 64)
	if parseErr != nil {
		return UnknownPID, parseErr
	}
	return Int64ToPidT(parsed)
}
