package prompt

import (
	"strings"
)

const scopeTemplate = `Is the following question primarily about mathematics, science, or a related technical field?
Answer with only 'yes' or 'no'.

Question: "{question}"`

const solutionTemplate = `You are a math professor. Your goal is to provide a clear, step-by-step solution to the user's question.
Use the following context to help you answer. If the context is empty or irrelevant, rely on your own knowledge.

IMPORTANT: Your final answer must be in plain text only. Do not use any markdown formatting like asterisks for bolding or hashes for headers.

Context:
{context}

Question:
{question}

Provide a detailed, step-by-step solution as plain text:`

const refinementTemplate = `You are a helpful teaching assistant. A student was given an answer to a math problem, but they had some feedback.
Your task is to rewrite the original answer to incorporate the student's feedback.

Original Question:
{question}

Original Answer:
{answer}

Student's Feedback:
"{feedback}"

Please provide a new, refined, and complete step-by-step answer that addresses the feedback:`

// fill substitutes placeholders in a single pass so user text containing
// "{context}" or similar is never expanded twice.
func fill(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func BuildScopeCheck(question string) string {
	return fill(scopeTemplate, map[string]string{"question": question})
}

func BuildSolution(question, context string) string {
	return fill(solutionTemplate, map[string]string{
		"question": question,
		"context":  context,
	})
}

func BuildRefinement(question, answer, feedback string) string {
	return fill(refinementTemplate, map[string]string{
		"question": question,
		"answer":   answer,
		"feedback": feedback,
	})
}
