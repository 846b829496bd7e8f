package models

// interview type used for every session created from the placement page
const DefaultInterviewType = "dsa"

const DefaultDifficulty = DifficultyMedium

// number of questions a session is expected to cover
const DefaultTotalQuestions = 5

// phase reported before the backend has said anything
const InitialPhase = "introduction"

// contains all valid difficulties (in lowercase)
var ValidDifficulties = map[Difficulty]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}

// contains all message types a user may send
var ValidUserMessageTypes = map[MessageType]bool{
	MessageTypeStart:         true,
	MessageTypeResponse:      true,
	MessageTypeAnswer:        true,
	MessageTypeCode:          true,
	MessageTypeClarification: true,
	MessageTypeQuestion:      true,
}

func ValidDifficultiesList() []string {
	return []string{"easy", "medium", "hard"}
}
