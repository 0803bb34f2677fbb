package grpc_test

import (
	"context"
	"database/sql"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	careerv1 "github.com/godilite/career-predictor/api/v1"
	handler "github.com/godilite/career-predictor/internal/grpc"
	"github.com/godilite/career-predictor/internal/metrics"
	"github.com/godilite/career-predictor/internal/model"
	"github.com/godilite/career-predictor/internal/repository"
	"github.com/godilite/career-predictor/internal/service"
	svcmocks "github.com/godilite/career-predictor/internal/service/mocks"
	"github.com/godilite/career-predictor/pkg/cache"
	grpcsrv "github.com/godilite/career-predictor/pkg/grpc/server"
)

type testEnv struct {
	client     careerv1.CareerPredictionClient
	conn       *grpc.ClientConn
	classifier *svcmocks.MockClassifier
	redis      *miniredis.Miniredis
}

func deterministicModel(ctx context.Context, req model.Request) (model.Response, error) {
	ok := true
	// higher Investigative score means a stronger science recommendation
	p := req.Features["I"] / 10
	return model.Response{
		Success:           &ok,
		RecommendedCareer: "Fisica",
		Confidence:        &p,
		Ranking: []model.Candidate{
			{Career: "Matematicas", Probability: p / 2},
			{Career: "Fisica", Probability: p},
			{Career: "Quimica", Probability: p / 3},
			{Career: "Biologia", Probability: p / 4},
			{Career: "Geologia", Probability: p / 5},
			{Career: "Astronomia", Probability: p / 6},
		},
	}, nil
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	repo := repository.NewPredictionRepository(db)
	require.NoError(t, repo.Migrate(ctx))

	mr := miniredis.RunT(t)
	cacheClient, err := cache.New(ctx, cache.WithAddress(mr.Addr()))
	require.NoError(t, err)
	t.Cleanup(func() { cacheClient.Close() })

	classifier := &svcmocks.MockClassifier{ClassifyFunc: deterministicModel}
	svc := service.NewPredictionService(classifier, logger,
		service.WithTimeout(2*time.Second),
		service.WithMetrics(metrics.New(prometheus.NewRegistry())),
	)
	handlers := handler.NewGRPCHandlers(svc, repo, cacheClient, logger, time.Minute)

	lis := bufconn.Listen(1 << 20)
	srv, err := grpcsrv.New(
		grpcsrv.WithListener(lis),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithLogging(true),
		grpcsrv.WithRecovery(true),
	)
	require.NoError(t, err)
	srv.RegisterServiceWithHealth(careerv1.ServiceName, func(s *grpc.Server) {
		careerv1.RegisterCareerPredictionServer(s, handlers)
	})
	srv.Start()
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &testEnv{
		client:     careerv1.NewCareerPredictionClient(conn),
		conn:       conn,
		classifier: classifier,
		redis:      mr,
	}
}

func answers(v int) map[string]any {
	out := make(map[string]any, 65)
	for i := 1; i <= 65; i++ {
		out[strconv.Itoa(i)] = v
	}
	return out
}

func predictRequest(t *testing.T, userID string, payload map[string]any) *structpb.Struct {
	t.Helper()
	s, err := careerv1.ToStruct(careerv1.PredictRequest{UserID: userID, Answers: payload})
	require.NoError(t, err)
	return s
}

func TestE2E_PredictAndFetch(t *testing.T) {
	env := setupE2E(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := env.client.Predict(ctx, predictRequest(t, "student-1", answers(4)))
	require.NoError(t, err)

	var created careerv1.Prediction
	require.NoError(t, careerv1.FromStruct(resp, &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "student-1", created.UserID)
	assert.Equal(t, "raw_answers", created.InputKind)
	assert.Equal(t, "Fisica", created.RecommendedCareer)
	assert.Equal(t, 40.0, created.ConfidencePercentage)
	require.Len(t, created.TopCareers, 5)
	assert.Equal(t, "Fisica", created.TopCareers[0].Career)
	assert.Equal(t, "Matematicas", created.TopCareers[1].Career)
	assert.Equal(t, 20.0, created.TopCareers[1].Percentage)
	assert.Len(t, created.Profile, 17)
	assert.Equal(t, 4.0, created.Profile["LM"])

	getReq, err := careerv1.ToStruct(careerv1.GetPredictionRequest{ID: created.ID})
	require.NoError(t, err)

	fetched, err := env.client.GetPrediction(ctx, getReq)
	require.NoError(t, err)
	var got careerv1.Prediction
	require.NoError(t, careerv1.FromStruct(fetched, &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.TopCareers, got.TopCareers)

	assert.Eventually(t, func() bool {
		return env.redis.Exists("grpc:prediction:" + created.ID)
	}, time.Second, 10*time.Millisecond)

	// served from the cache afterwards
	fetched, err = env.client.GetPrediction(ctx, getReq)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.Fields["id"].GetStringValue())
}

func TestE2E_ListPredictions(t *testing.T) {
	env := setupE2E(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var ids []string
	for _, v := range []int{2, 3, 5} {
		resp, err := env.client.Predict(ctx, predictRequest(t, "student-9", answers(v)))
		require.NoError(t, err)
		ids = append(ids, resp.Fields["id"].GetStringValue())
		time.Sleep(5 * time.Millisecond)
	}
	_, err := env.client.Predict(ctx, predictRequest(t, "someone-else", answers(3)))
	require.NoError(t, err)

	listReq, err := careerv1.ToStruct(careerv1.ListPredictionsRequest{UserID: "student-9", Limit: 2})
	require.NoError(t, err)
	resp, err := env.client.ListPredictions(ctx, listReq)
	require.NoError(t, err)

	var out careerv1.ListPredictionsResponse
	require.NoError(t, careerv1.FromStruct(resp, &out))
	require.Len(t, out.Predictions, 2)
	assert.Equal(t, ids[2], out.Predictions[0].ID)
	assert.Equal(t, ids[1], out.Predictions[1].ID)
}

func TestE2E_Errors(t *testing.T) {
	env := setupE2E(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	t.Run("out of range answer", func(t *testing.T) {
		payload := answers(3)
		payload["10"] = 6
		before := env.classifier.Calls()

		_, err := env.client.Predict(ctx, predictRequest(t, "", payload))

		st, _ := status.FromError(err)
		assert.Equal(t, codes.InvalidArgument, st.Code())
		assert.Equal(t, "answer for item 10 must be between 1 and 5", st.Message())
		assert.Equal(t, before, env.classifier.Calls())
	})

	t.Run("missing item", func(t *testing.T) {
		payload := answers(3)
		delete(payload, "65")

		_, err := env.client.Predict(ctx, predictRequest(t, "", payload))

		st, _ := status.FromError(err)
		assert.Equal(t, codes.InvalidArgument, st.Code())
		assert.Equal(t, "missing answer for item 65", st.Message())
	})

	t.Run("missing item outranks a fractional answer", func(t *testing.T) {
		payload := answers(3)
		payload["10"] = 2.5
		delete(payload, "65")

		_, err := env.client.Predict(ctx, predictRequest(t, "", payload))

		st, _ := status.FromError(err)
		assert.Equal(t, codes.InvalidArgument, st.Code())
		assert.Equal(t, "missing answer for item 65", st.Message())
	})

	t.Run("unknown prediction", func(t *testing.T) {
		req, err := careerv1.ToStruct(careerv1.GetPredictionRequest{ID: "does-not-exist"})
		require.NoError(t, err)

		_, err = env.client.GetPrediction(ctx, req)

		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("model crash", func(t *testing.T) {
		env.classifier.ClassifyFunc = func(ctx context.Context, req model.Request) (model.Response, error) {
			return model.Response{}, &model.ProcessError{ExitCode: 2, Stderr: "segfault"}
		}
		defer func() { env.classifier.ClassifyFunc = deterministicModel }()

		_, err := env.client.Predict(ctx, predictRequest(t, "", answers(3)))

		st, _ := status.FromError(err)
		assert.Equal(t, codes.Unavailable, st.Code())
		assert.NotContains(t, st.Message(), "segfault")
	})
}

func TestE2E_Health(t *testing.T) {
	env := setupE2E(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(env.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: careerv1.ServiceName})

	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}
