package core

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/godror/godror"
	"github.com/sijms/go-ora/v2/network"
)

var oraCodePattern = regexp.MustCompile(`ORA-(\d{5})`)

// OracleCode extracts the ORA-NNNNN code from a driver error, trying the
// go-ora and godror typed errors before falling back to a message scan.
func OracleCode(err error) (int, bool) {
	if err == nil {
		return 0, false
	}
	var oraErr *network.OracleError
	if errors.As(err, &oraErr) {
		return oraErr.ErrCode, true
	}
	if gErr, ok := godror.AsOraErr(err); ok {
		return gErr.Code(), true
	}
	if m := oraCodePattern.FindStringSubmatch(err.Error()); m != nil {
		code, convErr := strconv.Atoi(m[1])
		if convErr == nil {
			return code, true
		}
	}
	return 0, false
}
