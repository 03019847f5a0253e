package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wordweave/backend/internal/app"
	"wordweave/backend/internal/learner"
	"wordweave/backend/internal/lexicon"
	"wordweave/backend/internal/synth"
)

// Generation methods accepted by /api/generate
const (
	methodConceptual = "conceptual"
	methodRelations  = "relations"
	methodFrequency  = "frequency"
	methodEmotional  = "emotional"
)

type chatRequest struct {
	Message        string `json:"message" binding:"required"`
	ConversationID string `json:"conversation_id"`
}

type teachRequest struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
}

type learnRequest struct {
	Word     string `json:"word" binding:"required"`
	Sentence string `json:"sentence" binding:"required"`
	Category string `json:"category"`
	Context  string `json:"context"`
	// Direct learns immediately instead of queueing for the next cycle.
	Direct bool `json:"direct"`
}

type generateRequest struct {
	Method    string `json:"method" binding:"required"`
	Seed      string `json:"seed"`
	Emotion   string `json:"emotion"`
	MinLength int    `json:"min_length"`
	MaxLength int    `json:"max_length"`
}

type schedulerRequest struct {
	Active   *bool `json:"active"`
	Interval *int  `json:"interval"`
}

func newRouter(a *app.App, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": a.Backend.State()})
	})

	api := router.Group("/api")
	{
		api.POST("/chat", func(c *gin.Context) {
			var req chatRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			conv := a.Conversations.Get(req.ConversationID)
			reply := a.Orchestrator.Respond(c.Request.Context(), conv, req.Message)
			c.JSON(http.StatusOK, gin.H{
				"conversation_id": conv.ID,
				"reply":           reply,
			})
		})

		api.POST("/teach", func(c *gin.Context) {
			var req teachRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			learned := a.Orchestrator.LearnFromUserTeaching(c.Request.Context(), req.Question, req.Answer)
			c.JSON(http.StatusOK, gin.H{"learned": learned})
		})

		api.POST("/learn", func(c *gin.Context) {
			var req learnRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx := c.Request.Context()
			word := lexicon.Normalize(req.Word)
			if !lexicon.IsValidWord(word) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid word"})
				return
			}

			if req.Direct {
				result := a.Learner.LearnFromContextualData(ctx, word, learner.ContextMeta{
					Category: req.Category,
					Context:  req.Context,
				}, req.Sentence)
				c.JSON(http.StatusOK, gin.H{"result": result})
				return
			}

			id, err := a.Backend.SaveContent(ctx, lexicon.ContentRecord{
				Word:     word,
				Sentence: req.Sentence,
				Category: req.Category,
				Context:  req.Context,
				Language: a.Config.Language,
			})
			if err != nil {
				log.Error("Failed to queue content", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to queue content"})
				return
			}
			c.JSON(http.StatusAccepted, gin.H{"id": id})
		})

		api.POST("/generate", func(c *gin.Context) {
			var req generateRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			sentence, ok := generate(c, a, req)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown method " + strconv.Quote(req.Method)})
				return
			}
			c.JSON(http.StatusOK, gin.H{"sentence": sentence, "method": req.Method})
		})

		api.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  a.Scheduler.Status(),
				"backend": a.Backend.State(),
			})
		})

		api.GET("/activity", func(c *gin.Context) {
			entries, err := a.Scheduler.ActivityLog()
			if err != nil {
				log.Error("Failed to read activity log", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read activity log"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"activity": entries})
		})

		api.POST("/cycle", func(c *gin.Context) {
			force, _ := strconv.ParseBool(c.Query("force"))
			if force {
				c.JSON(http.StatusOK, a.Scheduler.ForceCycle(c.Request.Context()))
				return
			}
			c.JSON(http.StatusOK, a.Scheduler.Cycle(c.Request.Context()))
		})

		api.PUT("/scheduler", func(c *gin.Context) {
			var req schedulerRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if req.Interval != nil {
				a.Scheduler.SetInterval(*req.Interval)
			}
			if req.Active != nil {
				if *req.Active {
					a.Scheduler.Start()
				} else {
					a.Scheduler.Stop()
				}
			}
			c.JSON(http.StatusOK, a.Scheduler.Status())
		})
	}

	return router
}

func generate(c *gin.Context, a *app.App, req generateRequest) (string, bool) {
	ctx := c.Request.Context()
	minLen, maxLen := req.MinLength, req.MaxLength
	if minLen <= 0 {
		minLen = 3
	}
	if maxLen < minLen {
		maxLen = minLen + 12
	}
	seed := lexicon.Normalize(req.Seed)

	switch req.Method {
	case methodConceptual:
		return a.Synth.GenerateConceptualSentence(ctx, seed, minLen, maxLen), true
	case methodRelations:
		return a.Synth.GenerateSentenceWithRelations(ctx, seed, minLen, maxLen), true
	case methodFrequency:
		return a.Synth.GenerateFrequencyWalk(ctx, seed, minLen, maxLen), true
	case methodEmotional:
		emotion := synth.Emotion(req.Emotion)
		if emotion == "" {
			emotion = synth.Neutral
		}
		return a.Synth.GenerateEmotionalSentence(ctx, emotion, minLen, maxLen), true
	}
	return "", false
}
