/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

// TemplateForTest converts a runtime string for tests that need to exercise
// parse failures.
func TemplateForTest(s string) templateLiteral { return templateLiteral(s) }
