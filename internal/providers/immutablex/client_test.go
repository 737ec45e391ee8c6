package immutablex_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-minter/internal/adapter"
	"github.com/feral-file/ff-minter/internal/chain"
	"github.com/feral-file/ff-minter/internal/domain"
	"github.com/feral-file/ff-minter/internal/logger"
	"github.com/feral-file/ff-minter/internal/mocks"
	"github.com/feral-file/ff-minter/internal/providers/immutablex"
	"github.com/feral-file/ff-minter/internal/store/schema"
)

const (
	testSignerKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	testContract  = "0x00000000000000000000000000000000000000c0"
	testHolder    = "0x00000000000000000000000000000000000000A1"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// recordingServer captures every request body sent to the mint API
type recordingServer struct {
	*httptest.Server

	mu       sync.Mutex
	paths    []string
	apiKeys  []string
	bodies   [][]byte
	response func(path string) (int, string)
}

func newRecordingServer(t *testing.T, response func(path string) (int, string)) *recordingServer {
	rs := &recordingServer{response: response}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		rs.mu.Lock()
		rs.paths = append(rs.paths, r.URL.Path)
		rs.apiKeys = append(rs.apiKeys, r.Header.Get("x-api-key"))
		rs.bodies = append(rs.bodies, body)
		rs.mu.Unlock()

		status, payload := rs.response(r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(rs.Close)
	return rs
}

type testClientMocks struct {
	ctrl   *gomock.Controller
	store  *mocks.MockStore
	server *recordingServer
	client *immutablex.Client
}

func setupTestClient(t *testing.T, signerKey string, response func(path string) (int, string)) *testClientMocks {
	ctrl := gomock.NewController(t)
	tm := &testClientMocks{
		ctrl:   ctrl,
		store:  mocks.NewMockStore(ctrl),
		server: newRecordingServer(t, response),
	}

	httpClient := adapter.NewHTTPClientWithPolicy(5*time.Second, adapter.RetryPolicy{
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     20 * time.Millisecond,
		MaxElapsedTime:  100 * time.Millisecond,
	})

	client, err := immutablex.NewClient(immutablex.Config{
		APIURL:          tm.server.URL,
		APIKey:          "imx-key",
		SignerKey:       signerKey,
		RoyaltyAddress:  "0x00000000000000000000000000000000000000Bb",
		RoyaltyPercent:  2.5,
		MetadataBaseURL: "https://cdn.example",
	}, httpClient, adapter.NewJCS(), tm.store)
	require.NoError(t, err)
	tm.client = client

	return tm
}

func mintResponse(path string) (int, string) {
	if path == "/v2/mints" {
		return http.StatusOK, `{"results":[{"contract_address":"0xc0","token_id":"","tx_id":4711}]}`
	}
	return http.StatusOK, `{"transfer_id":99}`
}

func mintCall() chain.MintCall {
	return chain.MintCall{
		Network:         domain.Network{Name: "immutable", ClientKind: domain.ClientKindImmutable},
		Contract:        domain.Contract{Address: testContract},
		Scope:           "game-1",
		TemplateShortID: 3,
		To:              testHolder,
		Amount:          1,
	}
}

// verifySignature checks the auth signature of a request document against the test signer
func verifySignature(t *testing.T, doc map[string]interface{}) {
	sig, ok := doc["auth_signature"].(string)
	require.True(t, ok)
	delete(doc, "auth_signature")

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	canonical, err := adapter.NewJCS().Transform(raw)
	require.NoError(t, err)

	b, err := hexutil.Decode(sig)
	require.NoError(t, err)
	require.Len(t, b, crypto.SignatureLength)
	b[crypto.RecoveryIDOffset] -= 27

	pub, err := crypto.SigToPub(accounts.TextHash(crypto.Keccak256(canonical)), b)
	require.NoError(t, err)

	key, err := crypto.HexToECDSA(testSignerKey)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), crypto.PubkeyToAddress(*pub))
}

func TestClient_SubmitMint(t *testing.T) {
	tm := setupTestClient(t, testSignerKey, mintResponse)
	ctx := context.Background()

	tm.store.EXPECT().GetLatestMintedAsset(gomock.Any(), testContract).Return(&schema.MintedAsset{ID: 1, TokenID: "7"}, nil)

	sub, err := tm.client.SubmitMint(ctx, mintCall())
	require.NoError(t, err)
	assert.Empty(t, sub.Ref)
	assert.Equal(t, "8", sub.TokenID)
	assert.Equal(t, "4711", sub.ExternalID)

	require.Len(t, tm.server.bodies, 1)
	assert.Equal(t, "/v2/mints", tm.server.paths[0])
	assert.Equal(t, "imx-key", tm.server.apiKeys[0])

	var docs []map[string]interface{}
	require.NoError(t, json.Unmarshal(tm.server.bodies[0], &docs))
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, testContract, doc["contract_address"])
	users := doc["users"].([]interface{})
	user := users[0].(map[string]interface{})
	assert.Equal(t, "0x00000000000000000000000000000000000000a1", user["user"])
	token := user["tokens"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "8", token["id"])
	assert.Equal(t, "8:https://cdn.example/games/game-1/immutable/8", token["blueprint"])
	royalties := doc["royalties"].([]interface{})
	assert.Equal(t, 2.5, royalties[0].(map[string]interface{})["percentage"])

	verifySignature(t, doc)
}

func TestClient_SubmitMint_SequentialIDs(t *testing.T) {
	tm := setupTestClient(t, testSignerKey, mintResponse)
	ctx := context.Background()

	// the asset record of the first mint is not stored yet when the second one is submitted
	tm.store.EXPECT().GetLatestMintedAsset(gomock.Any(), testContract).Return(nil, nil).Times(2)

	first, err := tm.client.SubmitMint(ctx, mintCall())
	require.NoError(t, err)
	second, err := tm.client.SubmitMint(ctx, mintCall())
	require.NoError(t, err)

	assert.Equal(t, "1", first.TokenID)
	assert.Equal(t, "2", second.TokenID)
}

func TestClient_SubmitMint_APIError(t *testing.T) {
	calls := 0
	tm := setupTestClient(t, testSignerKey, func(path string) (int, string) {
		calls++
		if calls == 1 {
			return http.StatusBadRequest, `{"message":"invalid blueprint"}`
		}
		return mintResponse(path)
	})

	tm.store.EXPECT().GetLatestMintedAsset(gomock.Any(), testContract).Return(&schema.MintedAsset{TokenID: "3"}, nil).Times(2)

	_, err := tm.client.SubmitMint(context.Background(), mintCall())
	require.Error(t, err)
	var statusErr *adapter.StatusError
	assert.ErrorAs(t, err, &statusErr)

	// a rejected id is not consumed
	sub, err := tm.client.SubmitMint(context.Background(), mintCall())
	require.NoError(t, err)
	assert.Equal(t, "4", sub.TokenID)
}

func TestClient_SubmitMint_Validation(t *testing.T) {
	t.Run("amount above one", func(t *testing.T) {
		tm := setupTestClient(t, testSignerKey, mintResponse)
		call := mintCall()
		call.Amount = 2

		_, err := tm.client.SubmitMint(context.Background(), call)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("no signer", func(t *testing.T) {
		tm := setupTestClient(t, "", mintResponse)

		_, err := tm.client.SubmitMint(context.Background(), mintCall())
		assert.ErrorIs(t, err, domain.ErrSignerNotConfigured)
	})

	t.Run("owner mismatch", func(t *testing.T) {
		tm := setupTestClient(t, testSignerKey, mintResponse)
		call := mintCall()
		call.Contract.Owner = "0x00000000000000000000000000000000000000ff"

		_, err := tm.client.SubmitMint(context.Background(), call)
		assert.ErrorIs(t, err, domain.ErrSignerNotConfigured)
	})
}

func TestClient_SubmitBurn(t *testing.T) {
	tm := setupTestClient(t, testSignerKey, mintResponse)

	sub, err := tm.client.SubmitBurn(context.Background(), chain.BurnCall{
		Contract: domain.Contract{Address: testContract},
		From:     testHolder,
		TokenIDs: []string{"4", "5"},
		Amount:   1,
	})
	require.NoError(t, err)
	assert.Empty(t, sub.Ref)
	assert.Equal(t, "99,99", sub.ExternalID)

	require.Len(t, tm.server.bodies, 2)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(tm.server.bodies[1], &doc))
	assert.Equal(t, "/v1/burns", tm.server.paths[1])
	assert.Equal(t, "5", doc["token"].(map[string]interface{})["data"].(map[string]interface{})["token_id"])
	verifySignature(t, doc)
}

func TestClient_Streams(t *testing.T) {
	tm := setupTestClient(t, testSignerKey, mintResponse)
	assert.Equal(t, domain.ClientKindImmutable, tm.client.Kind())

	_, err := tm.client.SubscribeEvents(context.Background(), domain.Network{}, testContract, domain.EventKindTransfer, func(domain.ChainEvent) {})
	assert.ErrorIs(t, err, domain.ErrEventStreamUnsupported)

	event, err := tm.client.LookupSubmission(context.Background(), domain.Network{}, testContract, domain.EventKindTransfer, "")
	assert.NoError(t, err)
	assert.Nil(t, event)
}
