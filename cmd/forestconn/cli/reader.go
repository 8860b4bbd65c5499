// Copyright 2025 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// -- input path Value
type fileValue struct {
	value    *string
	typename string
}

// NewFileValue creates a cobra Value for the path of an existing,
// regular file.
func NewFileValue(def string, p *string, typename string) pflag.Value {
	fv := &fileValue{
		value:    p,
		typename: typename,
	}
	*fv.value = def

	return fv
}

func (f *fileValue) Set(val string) error {
	fi, err := os.Stat(val)
	if err != nil {
		return err
	}

	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", val)
	}

	*f.value = val

	return nil
}

func (f *fileValue) Type() string {
	return f.typename
}

func (f *fileValue) String() string {
	return *f.value
}
