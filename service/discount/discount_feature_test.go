package discount_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"bookgalaxy/service/discount"
	"bookgalaxy/util/apperr"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
)

type pricingContext struct {
	lines     []discount.Line
	fulfilled int
	result    discount.Breakdown
	err       error
}

func (c *pricingContext) reset() {
	c.lines = nil
	c.fulfilled = 0
	c.result = discount.Breakdown{}
	c.err = nil
}

func (c *pricingContext) aCartLine(price string, qty int) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	c.lines = append(c.lines, discount.Line{UnitPrice: p, Quantity: qty})
	return nil
}

func (c *pricingContext) aCartLineOnSale(price string, qty, percent int) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	c.lines = append(c.lines, discount.Line{
		UnitPrice:       p,
		Quantity:        qty,
		DiscountPercent: decimal.NewFromInt(int64(percent)),
		OnSale:          true,
	})
	return nil
}

func (c *pricingContext) theMemberHasFulfilledOrders(n int) error {
	c.fulfilled = n
	return nil
}

func (c *pricingContext) theCartIsPriced() error {
	c.result, c.err = discount.Calculate(c.lines, c.fulfilled, discount.DefaultPolicy())
	return nil
}

func expectAmount(name string, got decimal.Decimal, want string) error {
	if c := got.StringFixed(2); c != want {
		return fmt.Errorf("expected %s %s, got %s", name, want, c)
	}
	return nil
}

func (c *pricingContext) priced() error {
	if c.err != nil {
		return fmt.Errorf("pricing failed: %w", c.err)
	}
	return nil
}

func (c *pricingContext) theItemDiscountIs(v string) error {
	if err := c.priced(); err != nil {
		return err
	}
	return expectAmount("item discount", c.result.ItemDiscount, v)
}

func (c *pricingContext) theBulkDiscountIs(v string) error {
	if err := c.priced(); err != nil {
		return err
	}
	return expectAmount("bulk discount", c.result.BulkDiscount, v)
}

func (c *pricingContext) theLoyaltyDiscountIs(v string) error {
	if err := c.priced(); err != nil {
		return err
	}
	return expectAmount("loyalty discount", c.result.LoyaltyDiscount, v)
}

func (c *pricingContext) theTotalIs(v string) error {
	if err := c.priced(); err != nil {
		return err
	}
	return expectAmount("total", c.result.Total, v)
}

func (c *pricingContext) theBulkDiscountPercentIs(percent int) error {
	if err := c.priced(); err != nil {
		return err
	}
	if !c.result.BulkPercent.Equal(decimal.NewFromInt(int64(percent))) {
		return fmt.Errorf("expected bulk percent %d, got %s", percent, c.result.BulkPercent)
	}
	return nil
}

func (c *pricingContext) pricingFailsWithAValidationError() error {
	if c.err == nil {
		return errors.New("expected a validation error, pricing succeeded")
	}
	if apperr.Code(c.err) != apperr.ErrValidation {
		return fmt.Errorf("expected VALIDATION, got %v", c.err)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &pricingContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^a cart line priced (\d+\.\d{2}) with quantity (-?\d+)$`, tc.aCartLine)
	ctx.Step(`^a cart line priced (\d+\.\d{2}) with quantity (\d+) on sale at (\d+) percent$`, tc.aCartLineOnSale)
	ctx.Step(`^the member has (\d+) fulfilled orders$`, tc.theMemberHasFulfilledOrders)

	ctx.Step(`^the cart is priced$`, tc.theCartIsPriced)

	ctx.Step(`^the item discount is (\d+\.\d{2})$`, tc.theItemDiscountIs)
	ctx.Step(`^the bulk discount is (\d+\.\d{2})$`, tc.theBulkDiscountIs)
	ctx.Step(`^the loyalty discount is (\d+\.\d{2})$`, tc.theLoyaltyDiscountIs)
	ctx.Step(`^the total is (\d+\.\d{2})$`, tc.theTotalIs)
	ctx.Step(`^the bulk discount percent is (\d+)$`, tc.theBulkDiscountPercentIs)
	ctx.Step(`^pricing fails with a validation error$`, tc.pricingFailsWithAValidationError)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
