package engine

import (
	"github.com/enigmarikki/kala/bigint"
	"github.com/enigmarikki/kala/classgroup"
	"github.com/enigmarikki/kala/discriminant"
	"github.com/enigmarikki/kala/kalaerr"
)

// noForm is the zero Form, meaning "use generator(D)" at every call
// site that accepts an optional initial form.
var noForm = classgroup.Form{}

func kalaerrSelfTestFailed() error {
	return kalaerr.New(kalaerr.ComputationFailed, "self-test", "self test round trip failed to verify")
}

func discriminantForSelfTest(challenge [32]byte) ([]byte, error) {
	d, err := discriminant.FromChallenge(challenge, 256, nil)
	if err != nil {
		return nil, err
	}
	return bigint.ExportUnsigned(d, 0), nil
}
