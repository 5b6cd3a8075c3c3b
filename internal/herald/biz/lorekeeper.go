package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/herald/internal/herald/store"
	"github.com/kart-io/herald/internal/model"
	"github.com/kart-io/herald/pkg/llm"
	"github.com/kart-io/herald/pkg/utils/json"
)

const lorekeeperPromptVersion = "lorekeeper-v1"

const lorekeeperPrompt = "你是 Lorekeeper。請用繁體中文回答，內容要精準、可讀。" +
	"若檢索內容不足，明確說明限制，不可捏造。"

// Fixed user-facing texts. End users never see raw error output.
const (
	answerEmptyFallback = "目前找不到足夠資料回答，請提供更具體的問題。"
	answerBusyFallback  = "系統忙碌中，請稍後再試。"
)

// RejectedReasonDailyLimit is the machine-readable denial code stored on
// rejected queries.
const RejectedReasonDailyLimit = "DAILY_LIMIT_REACHED"

// Retriever provides retrieval evidence for a question within a tenant's
// space.
type Retriever interface {
	Retrieve(ctx context.Context, question string, space *model.RAGSpace) (model.JSONArray, error)
}

// ArangoRetriever is the placeholder vector retriever: it returns a single
// marker reference until the Arango pipeline is wired in, so queries already
// carry the evidence shape downstream consumers expect.
type ArangoRetriever struct{}

// Retrieve implements Retriever.
func (ArangoRetriever) Retrieve(_ context.Context, question string, space *model.RAGSpace) (model.JSONArray, error) {
	return model.JSONArray{
		map[string]any{
			"source":    "arango",
			"space_key": space.TenantID,
			"note":      "Vector RAG retrieval not implemented yet.",
			"question":  truncateRunes(question, 160),
		},
	}, nil
}

// AskRequest is one question from a follower.
type AskRequest struct {
	LineUserID  string  `json:"line_user_id" binding:"required"`
	Question    string  `json:"question" binding:"required,min=1,max=2000"`
	DisplayName *string `json:"display_name"`
	RAGSpaceKey string  `json:"rag_space_key"`
}

// AskResult is the outcome of one ask: the stored query, its status and the
// quota snapshot after consumption.
type AskResult struct {
	UserID         uint64               `json:"user_id"`
	QueryID        uint64               `json:"query_id"`
	Status         string               `json:"status"`
	Answer         *string              `json:"answer,omitempty"`
	RejectedReason *string              `json:"rejected_reason,omitempty"`
	Usage          *store.QuotaDecision `json:"usage"`
}

// LorekeeperService answers follower questions under a per-user daily
// quota. The quota is consumed exactly once per ask and never refunded: a
// failed generation still counts against the day.
type LorekeeperService struct {
	store     store.Factory
	gateway   ChatGateway
	retriever Retriever
	tenantID  string
	now       func() time.Time
}

// NewLorekeeperService creates a new LorekeeperService.
func NewLorekeeperService(store store.Factory, gateway ChatGateway, retriever Retriever, tenantID string) *LorekeeperService {
	if tenantID == "" {
		tenantID = DefaultTenantID
	}
	if retriever == nil {
		retriever = ArangoRetriever{}
	}
	return &LorekeeperService{
		store:     store,
		gateway:   gateway,
		retriever: retriever,
		tenantID:  tenantID,
		now:       time.Now,
	}
}

// Ask consumes one unit of the user's daily quota, retrieves evidence,
// generates an answer and records the query. Denials and failures both
// produce a stored query row and a deterministic user-facing message.
func (s *LorekeeperService) Ask(ctx context.Context, req *AskRequest) (*AskResult, error) {
	user, err := s.ensureUser(ctx, req.LineUserID, req.DisplayName)
	if err != nil {
		return nil, err
	}

	usageDate := s.usageDate(user.Timezone)
	quota, err := s.store.Quotas().Consume(ctx, user.ID, usageDate, user.DailyQuestionLimit)
	if err != nil {
		return nil, err
	}

	space := s.ragSpace(ctx, req.RAGSpaceKey)
	graphPlan := model.JSONMap{
		"graph_rag_reserved": space.IsGraphEnabled,
		"namespace":          space.GraphNamespace,
		"state":              "reserved_not_implemented",
	}

	if !quota.Allowed {
		query := &model.UserQuery{
			UserID:         user.ID,
			Question:       req.Question,
			Status:         model.QueryStatusRejected,
			RejectedReason: strptr(RejectedReasonDailyLimit),
			RAGProvider:    space.Backend,
			RAGSpaceKey:    space.TenantID,
			RAGMode:        space.Mode,
			RAGRefs:        model.JSONArray{},
			GraphPlan:      graphPlan,
			PromptVersion:  lorekeeperPromptVersion,
		}
		if err := s.store.Queries().Create(ctx, query); err != nil {
			return nil, err
		}
		denial := fmt.Sprintf("你今日提問次數已達上限（%d次）。", quota.LimitCount)
		return &AskResult{
			UserID:         user.ID,
			QueryID:        query.ID,
			Status:         model.QueryStatusRejected,
			RejectedReason: strptr(denial),
			Usage:          quota,
		}, nil
	}

	refs, err := s.retriever.Retrieve(ctx, req.Question, space)
	if err != nil {
		logger.Warnw("Retrieval failed, answering without evidence", "tenant_id", s.tenantID, "error", err)
		refs = model.JSONArray{}
	}

	started := s.now()
	answer, usage, genErr := s.generate(ctx, req.Question, refs)
	if genErr == nil {
		query := &model.UserQuery{
			UserID:        user.ID,
			Question:      req.Question,
			Answer:        &answer,
			Status:        model.QueryStatusAnswered,
			RAGProvider:   space.Backend,
			RAGSpaceKey:   space.TenantID,
			RAGMode:       space.Mode,
			RAGRefs:       refs,
			GraphPlan:     graphPlan,
			PromptVersion: lorekeeperPromptVersion,
		}
		// A failed answer insert is handled like a generation failure:
		// the user still gets the deterministic busy message.
		genErr = s.store.Queries().Create(ctx, query)
		if genErr == nil {
			s.recordRun(ctx, user, query, usage, nil, len(refs), s.now().Sub(started))
			return &AskResult{
				UserID:  user.ID,
				QueryID: query.ID,
				Status:  model.QueryStatusAnswered,
				Answer:  &answer,
				Usage:   quota,
			}, nil
		}
		logger.Errorw("Persisting answered query failed", "user_id", user.ID, "error", genErr)
	}

	query := &model.UserQuery{
		UserID:        user.ID,
		Question:      req.Question,
		Status:        model.QueryStatusFailed,
		RAGProvider:   space.Backend,
		RAGSpaceKey:   space.TenantID,
		RAGMode:       space.Mode,
		RAGRefs:       refs,
		GraphPlan:     graphPlan,
		PromptVersion: lorekeeperPromptVersion,
		Error:         strptr(truncateRunes(genErr.Error(), 500)),
	}
	if err := s.store.Queries().Create(ctx, query); err != nil {
		return nil, err
	}
	s.recordRun(ctx, user, query, usage, genErr, len(refs), s.now().Sub(started))
	return &AskResult{
		UserID:         user.ID,
		QueryID:        query.ID,
		Status:         model.QueryStatusFailed,
		RejectedReason: strptr(answerBusyFallback),
		Usage:          quota,
	}, nil
}

func (s *LorekeeperService) ensureUser(ctx context.Context, lineUserID string, displayName *string) (*model.User, error) {
	user, err := s.store.Users().Activate(ctx, lineUserID)
	if err != nil {
		return nil, err
	}
	if displayName != nil && (user.DisplayName == nil || *user.DisplayName != *displayName) {
		user.DisplayName = displayName
		if err := s.store.Users().Update(ctx, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// usageDate resolves "today" in the user's timezone; unknown zones fall back
// to UTC so quota accounting never fails on bad user data.
func (s *LorekeeperService) usageDate(tz string) string {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	return s.now().In(loc).Format("2006-01-02")
}

// ragSpace loads the tenant's retrieval space, falling back to the default
// namespaces when none is registered.
func (s *LorekeeperService) ragSpace(ctx context.Context, spaceKey string) *model.RAGSpace {
	if spaceKey == "" {
		spaceKey = "default"
	}
	space, err := s.store.RAGSpaces().Get(ctx, spaceKey)
	if err != nil {
		return &model.RAGSpace{
			TenantID:        "default",
			Backend:         "arango",
			Mode:            "vector",
			ArangoDatabase:  "default",
			VectorNamespace: "default",
			GraphNamespace:  "default_graph",
			IsGraphEnabled:  true,
		}
	}
	return space
}

func (s *LorekeeperService) generate(ctx context.Context, question string, refs model.JSONArray) (string, *llm.TokenUsage, error) {
	refsJSON, err := json.Marshal(refs)
	if err != nil {
		refsJSON = []byte("[]")
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: lorekeeperPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf("question:\n%s\n\nrag_refs:\n%s", question, refsJSON)},
	}

	resp, err := s.gateway.Chat(ctx, s.tenantID, messages)
	if err != nil {
		return "", nil, err
	}

	answer := strings.TrimSpace(resp.Content)
	if answer == "" {
		answer = answerEmptyFallback
	}
	return answer, resp.Usage, nil
}

func (s *LorekeeperService) recordRun(ctx context.Context, user *model.User, query *model.UserQuery, usage *llm.TokenUsage, genErr error, refsCount int, latency time.Duration) {
	cfg, _ := s.gateway.Tenant(s.tenantID)

	status := model.AgentRunStatusDone
	var errMsg *string
	if genErr != nil {
		status = model.AgentRunStatusFailed
		errMsg = strptr(genErr.Error())
	}

	meta := model.JSONMap{
		"rag_refs_count": refsCount,
		"user_id":        user.ID,
		"query_id":       query.ID,
		"latency_ms":     latency.Milliseconds(),
	}
	if usage != nil {
		meta["usage"] = map[string]any{
			"input_tokens":  usage.PromptTokens,
			"output_tokens": usage.CompletionTokens,
			"total_tokens":  usage.TotalTokens,
		}
	}

	run := &model.AgentRun{
		AgentName:     model.AgentLorekeeper,
		TenantID:      s.tenantID,
		SubjectID:     fmt.Sprintf("query:%d", query.ID),
		PromptVersion: lorekeeperPromptVersion,
		Provider:      cfg.Provider,
		Model:         cfg.Model,
		Status:        status,
		Error:         errMsg,
		Meta:          meta,
	}
	if err := s.store.AgentRuns().Create(ctx, run); err != nil {
		logger.Errorw("Recording lorekeeper run failed", "query_id", query.ID, "error", err)
	}
}
