package debate

import "fmt"

const continueDirective = "Please continue this round of the debate and deliver your speech according to the rules above."

// DefaultModeratorPersona applies when neither the request nor the preset table
// provides a moderator persona.
const DefaultModeratorPersona = "A rational, neutral and fair moderator who strictly avoids favouring either side."

const personaConsistency = "Keep this persona consistent for the whole debate. Lean into it through tone, word choice, sentence rhythm, imagery and the way you build arguments."

const personaPrecedence = "When the task requirements and the persona style conflict, keep the delivery true to the persona. You may adjust the content to fit it, but never at the expense of the facts."

const personaAudible = "Use diction, pacing, metaphor and emotional intensity so the audience recognises your character at once."

const introTask = `Acting as both moderator and judge, introduce the debate in 3 to 5 sentences:
1) the motion;
2) the stance of the pro side and of the con side;
3) the running order (openings, rebuttals, closings, verdict).
Stay neutral and do not argue for either side.`

const openingProTask = `Current stage: pro first speaker's opening.
As first speaker for the motion, set out your position and core case systematically. You may list 2 to 4 key arguments. Do not attack the other side yet, build your own case only.`

const openingConTask = `Current stage: con first speaker's opening.
You oppose the motion. Present your main arguments against it with 2 to 4 key reasons. Do not rebut the pro side directly, just state your position and its logic clearly.`

func refuteProTask(round int) string {
	return fmt.Sprintf(`Current stage: rebuttal round %d (pro turn). You speak for the pro side.
Focus on the opponent's most recent speech:
1) briefly restate their key points;
2) expose the gaps or faulty premises in them;
3) add 1 or 2 new arguments that strengthen the pro case.
Stay courteous and logical, no personal attacks.`, round)
}

func refuteConTask(round int) string {
	return fmt.Sprintf(`Current stage: rebuttal round %d (con turn). You speak for the con side.
Focus on the pro side's most recent speech:
1) briefly restate their key points;
2) expose the gaps or weaknesses in them;
3) add 1 or 2 new arguments that strengthen the con case.
Keep the logic tight. You may draw on common knowledge or experience but do not invent specific figures.`, round)
}

const closingProTask = `Current stage: pro closing statement, delivered by the pro fourth speaker.
In 2 to 4 paragraphs:
1) distil the 2 or 3 strongest arguments of your side;
2) point out the 1 or 2 most damaging problems in the opposing case;
3) end on one memorable line that leaves the audience with the pro position.`

const closingConTask = `Current stage: con closing statement, delivered by the con fourth speaker.
In 2 to 4 paragraphs:
1) distil the 2 or 3 strongest arguments of your side;
2) point out the most important flaw in the pro case;
3) end with a persuasive statement of why the audience should side with the con position.`

const verdictTask = `Current stage: moderator's summary and verdict.
You have followed the whole debate from introduction to closing. Judge strictly on what was actually said and never credit either side with points they did not make.

Deliver this as a spoken summary to the audience, natural and flowing:
1) recap the motion and the broad position of each side in a sentence or two;
2) assess each speaker on how well they fulfilled their role (first speakers frame and build the case, second speakers press the attack, third speakers extend and illustrate, fourth speakers sum up and elevate), noting clear strengths and weaknesses;
3) evaluate each team as a whole: clarity and structure of the case, how well the speakers supported one another, internal consistency, relevance to the motion;
4) compare the exchanges of attack and defence: which side found sharper lines of attack and which side answered challenges and held its ground better, with brief reasons;
5) weighing all of this, state clearly which side was more persuasive overall and explain the basis of your decision (depth of reasoning, rigour, quality of evidence, effectiveness of responses);
6) close with a short, neutral reminder that this verdict reflects only today's performances and is meant to provoke thought, not to settle the motion.

Notes:
- do not use headings, numbered lists, bullet points, bold text or any other formatting;
- do not output markdown, speak in one to three continuous paragraphs as if on stage;
- do not quote the speakers verbatim, summarise and evaluate instead of transcribing.`

// HumanVsAgentVerdictTask asks the moderator for a verdict on a human-vs-agent exchange.
const HumanVsAgentVerdictTask = `Current stage: moderator's summary and verdict.
You have followed this human-versus-AI debate from the start up to now. Judge strictly on what was actually said and never credit either side with points they did not make.

Deliver this as a spoken summary to the audience, natural and flowing:
1) recap the motion and the broad position of the human side and the AI side in a sentence or two;
2) evaluate both sides on clarity and structure of their case, rigour of reasoning, strength of evidence and how they handled the exchanges, noting clear strengths and weaknesses;
3) weighing these dimensions, state clearly which side was more persuasive overall and explain the basis of your decision in a few sentences;
4) close with a short, neutral reminder that this verdict reflects only this exchange and is meant to provoke thought, not to settle the motion.

Notes:
- do not output markdown, lists or headings, speak in one to three continuous paragraphs;
- do not repeat the speakers at length, summarise and evaluate instead of transcribing.`
