// Copyright 2025 Kadir Pekel
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

package task

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDecomposition_RejectsDuplicateIDs(t *testing.T) {
	d := Decomposition{Subtasks: []Subtask{
		{SubtaskID: "a"},
		{SubtaskID: "a"},
	}}
	err := ValidateDecomposition(d)
	require.ErrorIs(t, err, ErrInvalidDecomposition)
}

func TestValidateDecomposition_RejectsUnknownDependency(t *testing.T) {
	d := Decomposition{Subtasks: []Subtask{
		{SubtaskID: "a", Dependencies: []string{"ghost"}},
	}}
	err := ValidateDecomposition(d)
	require.ErrorIs(t, err, ErrInvalidDecomposition)
}

func TestValidateDecomposition_RejectsCycle(t *testing.T) {
	d := Decomposition{Subtasks: []Subtask{
		{SubtaskID: "a", Dependencies: []string{"b"}},
		{SubtaskID: "b", Dependencies: []string{"a"}},
	}}
	err := ValidateDecomposition(d)
	require.ErrorIs(t, err, ErrInvalidDecomposition)
}

func TestValidateDecomposition_AcceptsValidDAG(t *testing.T) {
	d := Decomposition{Subtasks: []Subtask{
		{SubtaskID: "a"},
		{SubtaskID: "b", Dependencies: []string{"a"}},
		{SubtaskID: "c", Dependencies: []string{"a", "b"}},
	}}
	require.NoError(t, ValidateDecomposition(d))
}

func TestValidateDecomposition_RejectsEmpty(t *testing.T) {
	require.ErrorIs(t, ValidateDecomposition(Decomposition{}), ErrInvalidDecomposition)
}
