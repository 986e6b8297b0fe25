package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/liamcoop/rulepipeline/command"
	"github.com/liamcoop/rulepipeline/internal/logger"
	"github.com/liamcoop/rulepipeline/rules"
	"github.com/liamcoop/rulepipeline/service"
)

const entityName = "Product"

// FactSchema declares the fields returned by Product.Facts
var FactSchema = rules.Schema{
	"Product": {
		"Name":     "string",
		"Price":    "float64",
		"Quantity": "int",
		"Status":   "string",
	},
}

// DefaultPricePolicies are checked on insert and update
var DefaultPricePolicies = []rules.Expression{
	{
		Source:      `Product.Price > 0.0`,
		Message:     "Price must be greater than zero",
		Association: "Price",
	},
	{
		Source:      `Product.Price <= 1000000.0`,
		Message:     "Price must not exceed 1000000",
		Association: "Price",
	},
}

// Config configures a catalog Service
type Config struct {
	// Policies are CEL expressions over Product facts. Nil means
	// DefaultPricePolicies; an empty slice disables them.
	Policies []rules.Expression

	// Compiler evaluates Policies. A compiler over FactSchema is created
	// when nil.
	Compiler *rules.Compiler

	Validate *validator.Validate
}

// Service manages products. CRUD commands come from service.Service;
// ShipCommand and DiscontinueCommand are catalog specific.
type Service struct {
	*service.Service[*Product, string]

	compiler *rules.Compiler
	policies []rules.Expression
	now      func() time.Time
}

// NewService creates a catalog service over proxy
func NewService(proxy service.DataProxy[*Product, string], cfg Config) (*Service, error) {
	s := &Service{
		compiler: cfg.Compiler,
		policies: cfg.Policies,
		now:      time.Now,
	}
	if s.policies == nil {
		s.policies = DefaultPricePolicies
	}
	if s.compiler == nil {
		c, err := rules.NewCompiler(FactSchema)
		if err != nil {
			return nil, fmt.Errorf("failed to create policy compiler: %w", err)
		}
		s.compiler = c
	}
	validate := cfg.Validate
	if validate == nil {
		validate = validator.New()
	}

	s.Service = service.New(proxy, service.Config[*Product, string]{
		EntityName: entityName,
		Validate:   validate,
		Hooks: service.Hooks[*Product, string]{
			PrepareInsert: s.prepareInsert,
			PrepareUpdate: s.prepareUpdate,
			Insert:        s.policyRules,
			Update:        s.policyRules,
		},
	})
	return s, nil
}

// NewMemoryProxy creates an in-memory product proxy with uuid ids
func NewMemoryProxy() *service.MemoryProxy[*Product, string] {
	return service.NewMemoryProxy(uuid.NewString, (*Product).Clone)
}

func (s *Service) policyRules(_ context.Context, p *Product, _ *command.ExecutionContext[*Product]) ([]rules.Rule, error) {
	return s.compiler.Rules(s.policies, p.Facts()), nil
}

// InsertCommand stores a copy of p. The copy gets a default status and
// timestamps when the command initializes; p itself is never modified.
func (s *Service) InsertCommand(p *Product) *command.Pipeline[*Product] {
	return s.Service.InsertCommand(cloneOrNil(p))
}

// UpdateCommand replaces a stored product with a copy of p
func (s *Service) UpdateCommand(p *Product) *command.Pipeline[*Product] {
	return s.Service.UpdateCommand(cloneOrNil(p))
}

func (s *Service) prepareInsert(_ context.Context, p *Product) error {
	if p.Status == "" {
		p.Status = StatusActive
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

func (s *Service) prepareUpdate(_ context.Context, p *Product) error {
	p.UpdatedAt = s.now()
	return nil
}

func cloneOrNil(p *Product) *Product {
	if p == nil {
		return nil
	}
	return p.Clone()
}

// ShipCommand removes qty units from stock. The product must exist, be
// active and hold at least qty units.
func (s *Service) ShipCommand(id string, qty int64) *command.Pipeline[*Product] {
	return command.NewServiceCommand(command.ServiceCommand[*Product]{
		OnInitialize: s.load(id),
		OnGetRules: func(_ context.Context, ec *command.ExecutionContext[*Product]) ([]rules.Rule, error) {
			idRule := s.existing(id, ec)
			idRule.IfValidThenValidate(
				rules.Predicate("Status", fmt.Sprintf("product %s is discontinued", id), func(context.Context) (bool, error) {
					p, _ := ec.Entity()
					return p.Active(), nil
				}),
				rules.Predicate("Quantity", fmt.Sprintf("insufficient stock to ship %d", qty), func(context.Context) (bool, error) {
					p, _ := ec.Entity()
					return p.Quantity >= qty, nil
				}),
			)
			return []rules.Rule{
				rules.Range("Quantity", qty, 1, math.MaxInt64),
				idRule,
			}, nil
		},
		OnExecute: func(ctx context.Context, ec *command.ExecutionContext[*Product]) (*Product, error) {
			p, _ := ec.Entity()
			p.Quantity -= qty
			p.UpdatedAt = s.now()
			updated, err := s.Proxy().Update(ctx, p)
			if err != nil {
				return nil, service.NotFoundFault(err, entityName, id)
			}
			logger.Debug("Shipped product", "id", id, "quantity", qty, "remaining", updated.Quantity, "invocation", ec.ID())
			return updated, nil
		},
	}, command.WithName("Product.ship"), command.WithEntityName(entityName))
}

// DiscontinueCommand retires an active product
func (s *Service) DiscontinueCommand(id string) *command.Pipeline[*Product] {
	return command.NewServiceCommand(command.ServiceCommand[*Product]{
		OnInitialize: s.load(id),
		OnGetRules: func(_ context.Context, ec *command.ExecutionContext[*Product]) ([]rules.Rule, error) {
			idRule := s.existing(id, ec)
			idRule.IfValidThenValidate(
				rules.Predicate("Status", fmt.Sprintf("product %s is already discontinued", id), func(context.Context) (bool, error) {
					p, _ := ec.Entity()
					return p.Active(), nil
				}),
			)
			return []rules.Rule{idRule}, nil
		},
		OnExecute: func(ctx context.Context, ec *command.ExecutionContext[*Product]) (*Product, error) {
			p, _ := ec.Entity()
			p.Status = StatusDiscontinued
			p.UpdatedAt = s.now()
			updated, err := s.Proxy().Update(ctx, p)
			if err != nil {
				return nil, service.NotFoundFault(err, entityName, id)
			}
			logger.Info("Discontinued product", "id", id, "invocation", ec.ID())
			return updated, nil
		},
	}, command.WithName("Product.discontinue"), command.WithEntityName(entityName))
}

// load stores the product in the execution context. A missing product
// leaves the context empty for the rules to report.
func (s *Service) load(id string) func(context.Context, *command.ExecutionContext[*Product]) error {
	return func(ctx context.Context, ec *command.ExecutionContext[*Product]) error {
		if id == "" {
			return nil
		}
		p, err := s.Proxy().GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("failed to load product %s: %w", id, err)
		}
		ec.SetEntity(p)
		return nil
	}
}

// existing is valid when id is set and was loaded. Successors may assume
// the entity is present.
func (s *Service) existing(id string, ec *command.ExecutionContext[*Product]) rules.Rule {
	idRule := rules.Required("ID", id)
	idRule.IfValidThenValidate(
		rules.Predicate("ID", fmt.Sprintf("product %s not found", id), func(context.Context) (bool, error) {
			_, ok := ec.Entity()
			return ok, nil
		}),
	)
	return idRule
}
