/*
Copyright © 2018 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package hash derives stable keys from values.
package hash

import (
	"encoding/gob"
	"fmt"
	"hash/fnv"

	"github.com/davecgh/go-spew/spew"
)

// printer writes values deterministically: map keys sorted and pointer
// addresses left out.
var printer = spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	DisableMethods:          true,
	SpewKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Key returns a key for object that only depends on its contents. Values
// gob cannot encode, such as interface fields holding unregistered types,
// are keyed from their spew dump instead.
func Key(object interface{}) string {
	h := fnv.New64a()
	if err := gob.NewEncoder(h).Encode(object); err != nil {
		h.Reset()
		printer.Fprintf(h, "%#v", object)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
