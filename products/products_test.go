package products_test

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/pcrs-client/cache"
	"github.com/jrsteele09/pcrs-client/poller"
	"github.com/jrsteele09/pcrs-client/products"
	"github.com/jrsteele09/pcrs-client/resource"
	"github.com/jrsteele09/pcrs-client/server"
	"github.com/jrsteele09/pcrs-client/server/servertest"
	"github.com/stretchr/testify/require"
)

var fastPoll = resource.WithPollConfig(poller.Config{
	Interval: 20 * time.Millisecond,
	Deadline: 3 * time.Second,
	Name:     "products",
})

func newService(t *testing.T, username string) (*products.Service, *servertest.Conn) {
	t.Helper()
	b := servertest.New(t, server.WithDemoData())
	c := b.Connect(t)
	b.SignIn(t, c, username)
	return products.NewService(c.HTTP, c.Queries, fastPoll), c
}

func TestVendorProducts_CRUD(t *testing.T) {
	svc, c := newService(t, server.DemoVendorUsername)
	ctx := context.Background()

	page, err := svc.VendorProducts(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 6, page.Count)

	_, err = svc.CreateVendorProduct(ctx, products.Input{Name: "Cheap", Category: "cpu"})
	require.Error(t, err, "price must be positive")

	created, err := svc.CreateVendorProduct(ctx, products.Input{Name: "Arc A580", Category: "gpu", Price: 179, Stock: 3})
	require.NoError(t, err)
	stale, err := c.Queries.IsStale(ctx, products.VendorKey)
	require.NoError(t, err)
	require.True(t, stale)

	replaced, err := svc.UpdateVendorProduct(ctx, created.ID, products.Input{Name: "Arc A580 8GB", Category: "gpu", Price: 169, Stock: 3})
	require.NoError(t, err)
	require.Equal(t, "Arc A580 8GB", replaced.Name)

	require.NoError(t, svc.DeleteVendorProduct(ctx, created.ID))
	page, err = svc.VendorProducts(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 6, page.Count)
}

func TestUpdateAdminProduct_CachesServerRecord(t *testing.T) {
	svc, c := newService(t, servertest.AdminUsername)
	ctx := context.Background()

	updated, err := svc.UpdateAdminProduct(ctx, 1, map[string]any{"price": 399.0})
	require.NoError(t, err)
	require.Equal(t, 399.0, updated.Price)

	detailKey := svc.AdminKey().With("1")
	cached, ok, err := cache.GetQueryData[products.Product](ctx, c.Queries, detailKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, updated, cached)

	got, err := svc.AdminProduct(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 399.0, got.Price)
	require.Equal(t, "TechParts Ltd", got.VendorName())
}

func imagesZip(t *testing.T, names ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create("images/" + name)
		require.NoError(t, err)
		_, err = w.Write([]byte("png"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestBulkUpload_WatchesUntilRowsAppear(t *testing.T) {
	svc, _ := newService(t, servertest.AdminUsername)
	ctx := context.Background()

	sheet := strings.NewReader("name,category,price,stock,vendor,image\n" +
		"Ryzen 5 7600,cpu,199,10,techparts,r5.png\n" +
		"B650 Tomahawk,motherboard,219,5,techparts,\n")
	job, handle, err := svc.BulkUpload(ctx, "products.csv", sheet, "images.zip", bytes.NewReader(imagesZip(t, "r5.png")))
	require.NoError(t, err)
	require.Equal(t, 2, job.Accepted)
	require.NotNil(t, handle)

	res, err := handle.Wait(ctx)
	require.NoError(t, err)
	require.True(t, res.Completed)

	// the poll stops at the first new row; the rest follow shortly
	var page resource.Page[products.Product]
	require.Eventually(t, func() bool {
		page, err = svc.AdminProducts(ctx, 0)
		return err == nil && page.Count == 8
	}, 2*time.Second, 20*time.Millisecond)

	var imported products.Product
	for _, p := range page.Results {
		if p.Name == "Ryzen 5 7600" {
			imported = p
		}
	}
	require.Equal(t, "/media/products/r5.png", imported.Image)
	require.Equal(t, "TechParts Ltd", imported.VendorName())
}

func TestBulkUpload_RequiresSpreadsheet(t *testing.T) {
	svc, _ := newService(t, servertest.AdminUsername)

	_, handle, err := svc.BulkUpload(context.Background(), "", nil, "", nil)
	require.Error(t, err)
	require.Nil(t, handle)
}
