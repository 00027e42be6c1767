package orders_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/pcrs-client/auth"
	"github.com/jrsteele09/pcrs-client/cache"
	"github.com/jrsteele09/pcrs-client/internal/utils"
	"github.com/jrsteele09/pcrs-client/orders"
	"github.com/jrsteele09/pcrs-client/server"
	"github.com/jrsteele09/pcrs-client/server/servertest"
	"github.com/jrsteele09/pcrs-client/users"
	"github.com/stretchr/testify/require"
)

func TestOrder_VendorPhoneIsNilSafe(t *testing.T) {
	tests := []struct {
		name  string
		order orders.Order
		want  string
	}{
		{"no product", orders.Order{}, ""},
		{"no vendor", orders.Order{Product: &orders.ProductRef{Name: "x"}}, ""},
		{"no phone", orders.Order{Product: &orders.ProductRef{Vendor: &orders.VendorRef{}}}, ""},
		{"phone", orders.Order{Product: &orders.ProductRef{Vendor: &orders.VendorRef{Phone: utils.Ptr("0800")}}}, "0800"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.order.VendorPhone())
		})
	}
	require.Equal(t, "", orders.Order{}.ProductName())
}

func TestOrders_Lifecycle(t *testing.T) {
	b := servertest.New(t, server.WithDemoData())
	ctx := context.Background()

	shopperConn := b.Connect(t)
	b.SignIn(t, shopperConn, server.DemoCustomerUsername)
	shopper := orders.NewService(shopperConn.HTTP, shopperConn.Queries)

	vendorConn := b.Connect(t)
	b.SignIn(t, vendorConn, server.DemoVendorUsername)
	vendor := orders.NewService(vendorConn.HTTP, vendorConn.Queries)

	_, err := shopper.Create(ctx, orders.Input{Product: 1})
	require.Error(t, err, "zero quantity is rejected before sending")

	placed, err := shopper.Create(ctx, orders.Input{Product: 3, Quantity: 1})
	require.NoError(t, err)
	require.Equal(t, "GeForce RTX 4070", placed.ProductName())
	require.False(t, placed.Confirmed())

	mine, err := shopper.List(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	incoming, err := vendor.List(ctx)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	require.Equal(t, server.DemoCustomerUsername, incoming[0].Customer.Username)

	confirmed, err := vendor.Confirm(ctx, placed.ID)
	require.NoError(t, err)
	require.True(t, confirmed.Confirmed())

	stale, err := vendorConn.Queries.IsStale(ctx, vendor.Key())
	require.NoError(t, err)
	require.True(t, stale)

	adminConn := b.Connect(t)
	b.SignIn(t, adminConn, servertest.AdminUsername)
	admin := orders.NewService(adminConn.HTTP, adminConn.Queries)
	require.NoError(t, admin.Delete(ctx, placed.ID))

	mine, err = shopper.List(ctx)
	require.NoError(t, err)
	require.Empty(t, mine)
}

func TestOrders_NextUserDoesNotSeePreviousUsersList(t *testing.T) {
	b := servertest.New(t, server.WithDemoData())
	ctx := context.Background()
	b.CreateAccount(t, users.Profile{Username: "other", Email: "other@example.com", Role: users.RoleUser}, "Other12345")

	c := b.Connect(t, cache.WithStaleTime(time.Minute))
	session, err := auth.NewService(c.HTTP, c.Sessions, c.Queries)
	require.NoError(t, err)
	svc := orders.NewService(c.HTTP, c.Queries)

	_, err = session.Login(ctx, server.DemoCustomerUsername, server.DemoCustomerPassword)
	require.NoError(t, err)
	_, err = svc.Create(ctx, orders.Input{Product: 2, Quantity: 1})
	require.NoError(t, err)
	mine, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	_, err = session.Logout(ctx)
	require.NoError(t, err)
	_, found, err := cache.GetQueryData[[]orders.Order](ctx, c.Queries, svc.Key())
	require.NoError(t, err)
	require.False(t, found)

	_, err = session.Login(ctx, "other", "Other12345")
	require.NoError(t, err)
	theirs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, theirs)
}

func TestOrders_LoginWithoutLogoutDropsCachedList(t *testing.T) {
	b := servertest.New(t, server.WithDemoData())
	ctx := context.Background()

	c := b.Connect(t, cache.WithStaleTime(time.Minute))
	session, err := auth.NewService(c.HTTP, c.Sessions, c.Queries)
	require.NoError(t, err)
	svc := orders.NewService(c.HTTP, c.Queries)

	_, err = session.Login(ctx, server.DemoCustomerUsername, server.DemoCustomerPassword)
	require.NoError(t, err)
	_, err = svc.Create(ctx, orders.Input{Product: 4, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.List(ctx)
	require.NoError(t, err)

	_, err = session.Login(ctx, servertest.AdminUsername, servertest.AdminPassword)
	require.NoError(t, err)
	stale, err := c.Queries.IsStale(ctx, svc.Key())
	require.NoError(t, err)
	require.True(t, stale)
}
