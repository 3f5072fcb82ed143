package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/repo"
)

const (
	DefaultSalesDays         = 30
	maxSalesDays             = 365
	DefaultLowStockThreshold = 10
	dailySalesDays           = 7
	topProductsSales         = 10
	topProductsPopularity    = 5
	leastPopularLimit        = 10
)

type StatsService struct {
	Repo *repo.GormRepo
	now  func() time.Time
}

func NewStatsService(r *repo.GormRepo) *StatsService {
	return &StatsService{Repo: r, now: time.Now}
}

func (s *StatsService) clock() time.Time {
	if s.now == nil {
		return time.Now().UTC()
	}
	return s.now().UTC()
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type Overview struct {
	TotalUsers     int64 `json:"total_users"`
	TotalProducts  int64 `json:"total_products"`
	ActiveProducts int64 `json:"active_products"`
	TotalOrders    int64 `json:"total_orders"`
	PendingOrders  int64 `json:"pending_orders"`
	TotalRevenue   int64 `json:"total_revenue"`
	TodayOrders    int64 `json:"today_orders"`
	TodayRevenue   int64 `json:"today_revenue"`
}

func (s *StatsService) Overview(ctx context.Context) (*Overview, error) {
	today := startOfDay(s.clock())
	var out Overview

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.TotalUsers, err = s.Repo.CountUsers(gctx, false, nil); return })
	g.Go(func() (err error) { out.TotalProducts, err = s.Repo.CountProducts(gctx, false); return })
	g.Go(func() (err error) { out.ActiveProducts, err = s.Repo.CountProducts(gctx, true); return })
	g.Go(func() (err error) { out.TotalOrders, err = s.Repo.CountOrders(gctx, "", nil); return })
	g.Go(func() (err error) {
		out.PendingOrders, err = s.Repo.CountOrders(gctx, models.OrderStatusPending, nil)
		return
	})
	g.Go(func() (err error) { out.TotalRevenue, err = s.Repo.Revenue(gctx, nil); return })
	g.Go(func() (err error) { out.TodayOrders, err = s.Repo.CountOrders(gctx, "", &today); return })
	g.Go(func() (err error) { out.TodayRevenue, err = s.Repo.Revenue(gctx, &today); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

type DailySales struct {
	Date    string `json:"date"`
	Orders  int64  `json:"orders"`
	Revenue int64  `json:"revenue"`
}

type SalesReport struct {
	PeriodDays        int                      `json:"period_days"`
	TotalOrders       int64                    `json:"total_orders"`
	TotalRevenue      int64                    `json:"total_revenue"`
	AverageOrderValue int64                    `json:"average_order_value"`
	OrdersByStatus    []models.StatusCount     `json:"orders_by_status"`
	TopProducts       []models.ProductSales    `json:"top_products"`
	RevenueByCategory []models.CategoryRevenue `json:"revenue_by_category"`
	DailySales        []DailySales             `json:"daily_sales"`
}

// Sales reports on the last days days; daily_sales always covers the last week.
func (s *StatsService) Sales(ctx context.Context, days int) (*SalesReport, error) {
	if days < 1 || days > maxSalesDays {
		return nil, fmt.Errorf("%w: days must be 1-%d", ErrValidation, maxSalesDays)
	}
	now := s.clock()
	since := now.AddDate(0, 0, -days)
	weekStart := startOfDay(now).AddDate(0, 0, -(dailySalesDays - 1))

	out := SalesReport{PeriodDays: days}
	var recent []models.Order

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.TotalOrders, err = s.Repo.CountOrders(gctx, "", &since); return })
	g.Go(func() (err error) { out.TotalRevenue, err = s.Repo.Revenue(gctx, &since); return })
	g.Go(func() (err error) { out.OrdersByStatus, err = s.Repo.OrdersByStatus(gctx, since); return })
	g.Go(func() (err error) {
		out.TopProducts, err = s.Repo.ProductSales(gctx, &since, topProductsSales)
		return
	})
	g.Go(func() (err error) { out.RevenueByCategory, err = s.Repo.RevenueByCategory(gctx, since); return })
	g.Go(func() (err error) { recent, err = s.Repo.OrdersSince(gctx, weekStart); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Cancelled orders count as orders but not as revenue.
	if n := out.TotalOrders; n > 0 {
		out.AverageOrderValue = out.TotalRevenue / n
	}
	out.DailySales = bucketDaily(recent, weekStart, dailySalesDays)
	return &out, nil
}

func bucketDaily(orders []models.Order, start time.Time, days int) []DailySales {
	out := make([]DailySales, days)
	idx := make(map[string]int, days)
	for i := range out {
		d := start.AddDate(0, 0, i).Format(time.DateOnly)
		out[i].Date = d
		idx[d] = i
	}
	for _, o := range orders {
		if i, ok := idx[o.CreatedAt.UTC().Format(time.DateOnly)]; ok {
			out[i].Orders++
			out[i].Revenue += o.TotalAmount
		}
	}
	return out
}

type UserStats struct {
	TotalUsers           int64   `json:"total_users"`
	ActiveUsers          int64   `json:"active_users"`
	NewUsersToday        int64   `json:"new_users_today"`
	NewUsersWeek         int64   `json:"new_users_week"`
	UsersWithOrders      int64   `json:"users_with_orders"`
	AverageOrdersPerUser float64 `json:"average_orders_per_user"`
}

func (s *StatsService) Users(ctx context.Context) (*UserStats, error) {
	today := startOfDay(s.clock())
	week := today.AddDate(0, 0, -7)
	var out UserStats
	var orders int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.TotalUsers, err = s.Repo.CountUsers(gctx, false, nil); return })
	g.Go(func() (err error) { out.ActiveUsers, err = s.Repo.CountUsers(gctx, true, nil); return })
	g.Go(func() (err error) { out.NewUsersToday, err = s.Repo.CountUsers(gctx, false, &today); return })
	g.Go(func() (err error) { out.NewUsersWeek, err = s.Repo.CountUsers(gctx, false, &week); return })
	g.Go(func() (err error) { out.UsersWithOrders, err = s.Repo.CountUsersWithOrders(gctx); return })
	g.Go(func() (err error) { orders, err = s.Repo.CountOrders(gctx, "", nil); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if out.TotalUsers > 0 {
		out.AverageOrdersPerUser = float64(orders) / float64(out.TotalUsers)
	}
	return &out, nil
}

type ProductStats struct {
	TotalProducts     int64                  `json:"total_products"`
	ActiveProducts    int64                  `json:"active_products"`
	OutOfStock        int64                  `json:"out_of_stock"`
	LowStock          int64                  `json:"low_stock"`
	LowStockThreshold int64                  `json:"low_stock_threshold"`
	AveragePrice      float64                `json:"average_price"`
	MostPopular       []models.ProductSales  `json:"most_popular"`
	LeastPopular      []models.UnsoldProduct `json:"least_popular"`
}

func (s *StatsService) Products(ctx context.Context, threshold int64) (*ProductStats, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("%w: low_stock_threshold must be >= 1", ErrValidation)
	}
	out := ProductStats{LowStockThreshold: threshold}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.TotalProducts, err = s.Repo.CountProducts(gctx, false); return })
	g.Go(func() (err error) { out.ActiveProducts, err = s.Repo.CountProducts(gctx, true); return })
	g.Go(func() error {
		items, err := s.Repo.StockBetween(gctx, 0, 0)
		out.OutOfStock = int64(len(items))
		return err
	})
	g.Go(func() error {
		items, err := s.Repo.StockBetween(gctx, 1, threshold)
		out.LowStock = int64(len(items))
		return err
	})
	g.Go(func() (err error) { out.AveragePrice, err = s.Repo.AverageActivePrice(gctx); return })
	g.Go(func() (err error) {
		out.MostPopular, err = s.Repo.ProductSales(gctx, nil, topProductsPopularity)
		return
	})
	g.Go(func() (err error) {
		out.LeastPopular, err = s.Repo.UnsoldProducts(gctx, leastPopularLimit)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

type InventoryAlerts struct {
	LowStockThreshold int64            `json:"low_stock_threshold"`
	OutOfStock        []models.Product `json:"out_of_stock"`
	LowStock          []models.Product `json:"low_stock"`
}

func (s *StatsService) InventoryAlerts(ctx context.Context, threshold int64) (*InventoryAlerts, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("%w: low_stock_threshold must be >= 1", ErrValidation)
	}
	out := InventoryAlerts{LowStockThreshold: threshold}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.OutOfStock, err = s.Repo.StockBetween(gctx, 0, 0); return })
	g.Go(func() (err error) { out.LowStock, err = s.Repo.StockBetween(gctx, 1, threshold); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
