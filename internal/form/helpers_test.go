package form

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func cmpIgnoreID() cmp.Option { return cmpopts.IgnoreFields(member{}, "ID") }
