package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/pcrs-client/internal/config"
	"github.com/jrsteele09/pcrs-client/orders"
	"github.com/jrsteele09/pcrs-client/products"
	"github.com/jrsteele09/pcrs-client/server"
	"github.com/jrsteele09/pcrs-client/server/servertest"
	"github.com/jrsteele09/pcrs-client/token"
	"github.com/jrsteele09/pcrs-client/upload"
	"github.com/jrsteele09/pcrs-client/users"
	fakeuserrepo "github.com/jrsteele09/pcrs-client/users/repofake"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, method, url, access string, body, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func login(t *testing.T, b *servertest.Backend, username, password string) token.Pair {
	t.Helper()
	var pair token.Pair
	status := doJSON(t, http.MethodPost, b.URL+"/token/", "", map[string]string{"username": username, "password": password}, &pair)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)
	return pair
}

func TestToken_InvalidCredentials(t *testing.T) {
	b := servertest.New(t)

	var body map[string]string
	status := doJSON(t, http.MethodPost, b.URL+"/token/", "", map[string]string{"username": "admin", "password": "nope"}, &body)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "No active account found with the given credentials", body["detail"])
}

func TestToken_RefreshRotatesPair(t *testing.T) {
	b := servertest.New(t)
	pair := login(t, b, servertest.AdminUsername, servertest.AdminPassword)

	var refreshed token.Pair
	status := doJSON(t, http.MethodPost, b.URL+"/token/refresh", "", map[string]string{"refresh": pair.Refresh}, &refreshed)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, refreshed.Access)

	var body map[string]string
	status = doJSON(t, http.MethodPost, b.URL+"/token/refresh", "", map[string]string{"refresh": pair.Access}, &body)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "token_not_valid", body["code"])
}

func TestRegister_FieldErrors(t *testing.T) {
	b := servertest.New(t)

	var fields map[string][]string
	status := doJSON(t, http.MethodPost, b.URL+"/register/", "", map[string]string{"username": "admin", "email": "bad", "password": "weak"}, &fields)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, fields, "email")

	status = doJSON(t, http.MethodPost, b.URL+"/register/", "", map[string]string{"username": "admin", "email": "a@b.co", "password": "weak"}, &fields)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, fields, "password")
	require.Equal(t, []string{"A user with that username already exists."}, fields["username"])
}

func TestProfile_RequiresAuthAndRole(t *testing.T) {
	b := servertest.New(t)

	var body map[string]string
	require.Equal(t, http.StatusUnauthorized, doJSON(t, http.MethodGet, b.URL+"/user/profile/", "", nil, &body))
	require.Equal(t, http.StatusUnauthorized, doJSON(t, http.MethodGet, b.URL+"/user/profile/", "garbage", nil, &body))
	require.Equal(t, "token_not_valid", body["code"])

	pair := login(t, b, servertest.AdminUsername, servertest.AdminPassword)
	var profile map[string]any
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, b.URL+"/user/profile/", pair.Access, nil, &profile))
	require.Equal(t, "admin", profile["role"])

	// the vendor profile is for vendors only
	require.Equal(t, http.StatusForbidden, doJSON(t, http.MethodGet, b.URL+"/vendor/profile/", pair.Access, nil, &body))
}

func TestAdmin_PaginationAndInvalidPage(t *testing.T) {
	b := servertest.New(t)
	access := login(t, b, servertest.AdminUsername, servertest.AdminPassword).Access

	for i := 1; i <= 25; i++ {
		status := doJSON(t, http.MethodPost, b.URL+"/admin/benchmarks/", access,
			map[string]any{"component": "cpu", "name": fmt.Sprintf("cpu-%02d", i), "score": i}, nil)
		require.Equal(t, http.StatusCreated, status)
	}

	var page struct {
		Count    int              `json:"count"`
		Next     *string          `json:"next"`
		Previous *string          `json:"previous"`
		Results  []map[string]any `json:"results"`
	}
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, b.URL+"/admin/benchmarks/?page=3", access, nil, &page))
	require.Equal(t, 25, page.Count)
	require.Len(t, page.Results, 5)
	require.Nil(t, page.Next)
	require.NotNil(t, page.Previous)

	var body map[string]string
	require.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, b.URL+"/admin/benchmarks/?page=4", access, nil, &body))
	require.Equal(t, "Invalid page.", body["detail"])
	require.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, b.URL+"/admin/widgets/", access, nil, &body))
}

func TestAdmin_UploadImportsAfterDelay(t *testing.T) {
	b := servertest.New(t)
	access := login(t, b, servertest.AdminUsername, servertest.AdminPassword).Access

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(upload.SpreadsheetField, "bench.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Component,Name,Score\ncpu,Alpha,50\ngpu,Beta,70\ncpu,Broken,notanumber\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, b.URL+"/admin/benchmarks/upload/", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+access)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	var job upload.Job
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&job))
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Equal(t, 3, job.Accepted)

	count := func() int {
		var page struct {
			Count int `json:"count"`
		}
		require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, b.URL+"/admin/benchmarks/", access, nil, &page))
		return page.Count
	}
	// the bad row is skipped
	require.Eventually(t, func() bool { return count() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func uploadCSV(t *testing.T, url, access, csv string) int {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(upload.SpreadsheetField, "sheet.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+access)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestAdmin_ProductUploadSkipsUnparsableNumbers(t *testing.T) {
	b := servertest.New(t)
	access := login(t, b, servertest.AdminUsername, servertest.AdminPassword).Access

	sheet := "name,category,price,stock\n" +
		"Bad Stock,motherboard,150,abc\n" +
		"Bad Price,motherboard,cheap,2\n" +
		"Good Board,motherboard,150,4\n"
	require.Equal(t, http.StatusAccepted, uploadCSV(t, b.URL+"/admin/products/upload/", access, sheet))

	var page struct {
		Count   int                `json:"count"`
		Results []products.Product `json:"results"`
	}
	require.Eventually(t, func() bool {
		require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, b.URL+"/admin/products/", access, nil, &page))
		return page.Count > 0
	}, 2*time.Second, 10*time.Millisecond)

	// rows import in order, so the last row showing up means the bad ones were seen
	require.Equal(t, 1, page.Count)
	require.Equal(t, "Good Board", page.Results[0].Name)
	require.Equal(t, 4, page.Results[0].Stock)
}

type brokenListRepo struct {
	*fakeuserrepo.FakeUserRepo
}

func (brokenListRepo) List(users.Role, int, int) ([]*users.Account, int, error) {
	return nil, 0, fmt.Errorf("accounts table unavailable")
}

func TestAdmin_ListRepoFailureIsServerError(t *testing.T) {
	cfg, err := config.FromEnv()
	require.NoError(t, err)
	dev, err := server.New(cfg, server.NewInMemoryRepos(brokenListRepo{fakeuserrepo.NewFakeUserRepo()}),
		server.WithAdminPassword(servertest.AdminPassword))
	require.NoError(t, err)
	ts := httptest.NewServer(dev)
	t.Cleanup(func() {
		ts.Close()
		require.NoError(t, dev.Close())
	})

	var pair token.Pair
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, ts.URL+"/token/", "",
		map[string]string{"username": servertest.AdminUsername, "password": servertest.AdminPassword}, &pair))

	var body map[string]string
	require.Equal(t, http.StatusInternalServerError, doJSON(t, http.MethodGet, ts.URL+"/admin/vendors/", pair.Access, nil, &body))
	require.Equal(t, "A server error occurred.", body["detail"])
}

func TestAdmin_UploadWithoutFile(t *testing.T) {
	b := servertest.New(t)
	access := login(t, b, servertest.AdminUsername, servertest.AdminPassword).Access

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("note", "nothing attached"))
	require.NoError(t, w.Close())
	req, err := http.NewRequest(http.MethodPost, b.URL+"/admin/products/upload/", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+access)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var fields map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fields))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, []string{"No file was submitted."}, fields["file"])
}

func TestOrders_ScopedByRole(t *testing.T) {
	b := servertest.New(t, server.WithDemoData())
	vendor := login(t, b, server.DemoVendorUsername, server.DemoVendorPassword).Access
	shopper := login(t, b, server.DemoCustomerUsername, server.DemoCustomerPassword).Access

	var order orders.Order
	status := doJSON(t, http.MethodPost, b.URL+"/orders/", shopper, orders.Input{Product: 1, Quantity: 2}, &order)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, orders.StatusPending, order.Status)
	require.Equal(t, 898.0, order.Total)
	require.Equal(t, "+44 20 7946 0000", order.VendorPhone())

	// vendors cannot place orders
	require.Equal(t, http.StatusForbidden, doJSON(t, http.MethodPost, b.URL+"/orders/", vendor, orders.Input{Product: 1, Quantity: 1}, nil))

	var fields map[string][]string
	require.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, b.URL+"/orders/", shopper, orders.Input{Product: 1, Quantity: 1000}, &fields))
	require.Contains(t, fields, "quantity")

	var seen []orders.Order
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, b.URL+"/orders/", vendor, nil, &seen))
	require.Len(t, seen, 1)

	var confirmed orders.Order
	path := fmt.Sprintf("%s/orders/%d/", b.URL, order.ID)
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPatch, path, vendor, map[string]string{"action": "confirm"}, &confirmed))
	require.True(t, confirmed.Confirmed())

	// confirmed orders can no longer be cancelled by the customer
	require.Equal(t, http.StatusForbidden, doJSON(t, http.MethodDelete, path, shopper, nil, nil))
	admin := login(t, b, servertest.AdminUsername, servertest.AdminPassword).Access
	require.Equal(t, http.StatusNoContent, doJSON(t, http.MethodDelete, path, admin, nil, nil))
}

func TestVendorProducts_Ownership(t *testing.T) {
	b := servertest.New(t, server.WithDemoData())
	vendor := login(t, b, server.DemoVendorUsername, server.DemoVendorPassword).Access

	var created products.Product
	status := doJSON(t, http.MethodPost, b.URL+"/vendor/products/", vendor,
		products.Input{Name: "Arc A770", Category: "gpu", Price: 289, Stock: 4}, &created)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "TechParts Ltd", created.VendorName())

	// a second vendor cannot see or delete it
	admin := login(t, b, servertest.AdminUsername, servertest.AdminPassword).Access
	require.Equal(t, http.StatusCreated, doJSON(t, http.MethodPost, b.URL+"/admin/vendors/", admin, map[string]string{
		"username": "rival", "email": "rival@example.com", "password": "Rival12345", "company_name": "Rival",
	}, nil))
	rival := login(t, b, "rival", "Rival12345").Access
	path := fmt.Sprintf("%s/vendor/products/%d/", b.URL, created.ID)
	require.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, path, rival, nil, nil))
	require.Equal(t, http.StatusNotFound, doJSON(t, http.MethodDelete, path, rival, nil, nil))

	var replaced products.Product
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPut, path, vendor,
		products.Input{Name: "Arc A770 16GB", Category: "gpu", Price: 319, Stock: 2}, &replaced))
	require.Equal(t, created.ID, replaced.ID)
	require.Equal(t, 319.0, replaced.Price)
	require.Equal(t, http.StatusNoContent, doJSON(t, http.MethodDelete, path, vendor, nil, nil))
}

func TestRecommend_Flow(t *testing.T) {
	b := servertest.New(t, server.WithDemoData())

	var body map[string]string
	require.Equal(t, http.StatusNotFound, doJSON(t, http.MethodPost, b.URL+"/recommend/", "", map[string]string{"session_id": "s1"}, &body))

	prefs := map[string]any{"session_id": "s1", "primary_activity": "Gaming", "secondary_activities": []string{"Streaming"}}
	require.Equal(t, http.StatusCreated, doJSON(t, http.MethodPost, b.URL+"/user_preference/", "", prefs, nil))

	var empty []products.Product
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, b.URL+"/recommend_product/?session_id=s1", "", nil, &empty))
	require.Empty(t, empty)

	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, b.URL+"/recommend/", "", map[string]string{"session_id": "s1"}, nil))

	var recommended []products.Product
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, b.URL+"/recommend_product/?session_id=s1", "", nil, &recommended))
	// gaming plus one secondary activity needs a score of 85, cheapest first
	names := make([]string, 0, len(recommended))
	for _, p := range recommended {
		names = append(names, p.Name)
	}
	require.Equal(t, []string{"Ryzen 7 7800X3D", "GeForce RTX 4070"}, names)
}

func TestSuggestions(t *testing.T) {
	b := servertest.New(t, server.WithDemoData())

	var words []string
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, b.URL+"/suggestions/", "", nil, &words))
	require.Contains(t, words, "gaming")
	require.Contains(t, words, "GeForce")
	require.Contains(t, words, "gpu")
	require.IsNonDecreasing(t, lower(words))
}

func lower(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = string(bytes.ToLower([]byte(w)))
	}
	return out
}

func TestNotFound(t *testing.T) {
	b := servertest.New(t)
	var body map[string]string
	require.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, b.URL+"/nope/", "", nil, &body))
	require.Contains(t, body["detail"], "/nope/")
}
