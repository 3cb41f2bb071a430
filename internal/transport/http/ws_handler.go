package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"history-quiz-service/internal/app"
	"history-quiz-service/internal/domain"
)

// masteryScore is the total at which the mastery badge is granted.
const (
	masteryScore = 10
	masteryBadge = "Quiz Master"
)

type WSHandler struct {
	engine    *app.Engine
	authoring *app.Authoring
	upgrader  websocket.Upgrader
}

func NewWSHandler(engine *app.Engine, authoring *app.Authoring) *WSHandler {
	return &WSHandler{
		engine:    engine,
		authoring: authoring,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

// playQuestion is a question with the answer key stripped.
type playQuestion struct {
	ID         string            `json:"id"`
	Prompt     string            `json:"prompt"`
	Options    []string          `json:"options"`
	Difficulty domain.Difficulty `json:"difficulty"`
}

type progressPayload struct {
	Score   int               `json:"score"`
	Answers map[string]string `json:"answers"`
}

type badgePayload struct {
	Name string `json:"name"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz
// use cases. One connection is one user playing one quiz.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	userID := r.URL.Query().Get("userId")
	if quizID == "" || userID == "" {
		http.Error(w, "missing quizId or userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	if err := h.authoring.IncrementPlayCount(r.Context(), quizID); err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// Restore state so a returning player sees their score and answers.
	score, err := h.engine.UserScore(r.Context(), userID, quizID)
	if err == nil {
		answers, answersErr := h.engine.UserAnswers(r.Context(), userID, quizID)
		if answersErr == nil {
			send <- outboundMessage[any]{Type: "progress", Payload: progressPayload{Score: score, Answers: answers}}
		}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			result, err := h.engine.SubmitAnswer(r.Context(), userID, quizID, payload.QuestionID, payload.Answer)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "answerResult", Payload: result}
			if result.Awarded > 0 && result.TotalScore >= masteryScore {
				if err := h.engine.AwardBadge(r.Context(), userID, masteryBadge); err != nil {
					log.Printf("award badge: %v", err)
				} else if result.TotalScore == masteryScore {
					send <- outboundMessage[any]{Type: "badge", Payload: badgePayload{Name: masteryBadge}}
				}
			}
		case "questions":
			questions, err := h.engine.AdaptiveQuestionSet(r.Context(), quizID, userID)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			stripped := make([]playQuestion, 0, len(questions))
			for _, q := range questions {
				stripped = append(stripped, playQuestion{
					ID:         q.ID,
					Prompt:     q.Prompt,
					Options:    q.Options,
					Difficulty: q.Difficulty,
				})
			}
			send <- outboundMessage[any]{Type: "questions", Payload: stripped}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(send)
	<-writerDone
}
