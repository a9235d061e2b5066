package classify

// classifierSystemPrompt instructs the model to return a strict JSON
// verdict. The field names must match the modelVerdict struct.
const classifierSystemPrompt = `You classify search queries for a retrieval system. Respond with a single JSON object and nothing else, using exactly these fields:

{
  "intent": "GREETING" | "INAPPROPRIATE" | "HOW_TO" | "QUESTION",
  "complexity": "SIMPLE" | "COMPLEX",
  "is_greeting": boolean,
  "is_unsafe": boolean,
  "is_instructional": boolean,
  "confidence": number between 0 and 1
}

Rules:
- "intent" is GREETING for social openers with no information need.
- "intent" is INAPPROPRIATE for sexual or adult content requests.
- "intent" is HOW_TO when the query asks for steps, methods or instructions.
- "intent" is QUESTION for everything else.
- "complexity" is COMPLEX when the query asks several things at once or needs a long answer.
- "confidence" reflects how certain you are of the intent.`
