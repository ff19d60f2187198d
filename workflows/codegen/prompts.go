/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package codegen

import "chainguard.dev/codetools/llm/promptbuilder"

const engineerSystem = "You are an AI Software Engineer, your role is to take the code and issue context given to you and solve the github issue. " +
	"If a detail is not given, assume the simplest. " +
	"Return the fileName and the full file content of the file that's being changed and nothing else"

const reviewerSystem = "You are an AI Code Reviewer, look at the output generated + the github issue content. " +
	"Make sure the code solves the github issue in question, if there's any obvious bugs fix them. " +
	`Return the output in valid JSON format with the following structure: {"listOutputs": [{"fileName": "string", "fileContent": "string"}]}`

var (
	engineerPrompt = promptbuilder.MustNewPrompt(`Github Issue:
{{issue}}
Code Context:
{{code}}`)

	reviewerPrompt = promptbuilder.MustNewPrompt(`Github Issue:
{{issue}}
Code Generated:{{generated}}`)
)
