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

import "fmt"

// Error is a sentinel-style error carrying a stable code, the same
// pattern the teacher's task package used for API-facing failures.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

var (
	ErrNotFound             = &Error{Code: "not_found", Message: "task not found"}
	ErrInvalidDecomposition = &Error{Code: "invalid_decomposition", Message: "decomposition failed validation"}
	ErrAlreadyTerminal      = &Error{Code: "already_terminal", Message: "task has already reached a terminal status"}
)

// notFound returns a copy of ErrNotFound naming the offending id.
func notFound(id string) error {
	return &Error{Code: ErrNotFound.Code, Message: fmt.Sprintf("task %q not found", id)}
}
