package graphqlserver

import (
	"context"
	"encoding/json"
	"time"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"storefront.GO/config"
	"storefront.GO/graphql"
	"storefront.GO/graphql/registry"
	model "storefront.GO/model/cart"
	entity "storefront.GO/model/entity"
	eventRepo "storefront.GO/model/repository/event"
	cartService "storefront.GO/service/cart"
)

// Deps is what the resolvers run against.
type Deps struct {
	Controller *cartService.Controller
	Controls   *cartService.LineItemControls
	Events     *eventRepo.EventRepository
}

// RootResolver is the root for graphql-go.
type RootResolver struct {
	Deps Deps
}

// Query returns the query resolver.
func (r *RootResolver) Query() *QueryResolver {
	return &QueryResolver{deps: r.Deps}
}

// Mutation returns the mutation resolver.
func (r *RootResolver) Mutation() *MutationResolver {
	return &MutationResolver{deps: r.Deps}
}

// QueryResolver implements Query fields.
type QueryResolver struct {
	deps Deps
}

// --- GraphQL model types (UseFieldResolvers maps fields by name) ---

type Cart struct {
	ItemCount  int32
	TotalValue int32
	Note       string
	Items      []CartLine
}

type CartLine struct {
	Key             string
	VariantId       string
	ProductId       string
	Title           string
	Quantity        int32
	Price           int32
	LinePrice       int32
	IsFreeGift      bool
	LinkedToProduct string
}

type CartError struct {
	Field   string
	Message string
}

type CartResult struct {
	Cart   *Cart
	Errors []CartError
}

type CartEvent struct {
	EventId    int32
	Topic      string
	Source     string
	ItemCount  int32
	TotalValue int32
	Payload    *string
	CreatedAt  string
}

type GiftConfig struct {
	FreeProductThreshold  int32
	FreeShippingThreshold int32
	FreeProductVariantId  string
	GiftProductIds        []string
	RelyOnProductId       string
	KitActive             bool
	ShowProgressBar       bool
}

func cartModel(snap *model.Snapshot) *Cart {
	out := &Cart{
		ItemCount:  int32(snap.ItemCount),
		TotalValue: int32(snap.TotalValue),
		Note:       snap.Note,
		Items:      []CartLine{},
	}
	for _, item := range snap.Items {
		out.Items = append(out.Items, CartLine{
			Key:             item.Key,
			VariantId:       item.VariantID,
			ProductId:       item.ProductID,
			Title:           item.Title,
			Quantity:        int32(item.Quantity),
			Price:           int32(item.Price),
			LinePrice:       int32(item.LinePrice),
			IsFreeGift:      item.IsFreeGift(),
			LinkedToProduct: item.Properties[model.PropLinkedToProduct],
		})
	}
	return out
}

func (r *QueryResolver) Cart(ctx context.Context) (*Cart, error) {
	snap := r.deps.Controller.Last()
	if snap == nil {
		var err error
		snap, err = r.deps.Controller.Refresh(ctx)
		if err != nil {
			return nil, err
		}
	}
	return cartModel(snap), nil
}

// CartEventsArgs matches the cartEvents query arguments (default limit 50).
type CartEventsArgs struct {
	Topic *string
	Limit int32
}

func (r *QueryResolver) CartEvents(ctx context.Context, args CartEventsArgs) ([]CartEvent, error) {
	out := []CartEvent{}
	if r.deps.Events == nil {
		return out, nil
	}
	limit := int(args.Limit)
	if limit <= 0 {
		limit = 50
	}
	var (
		rows []entity.CartEvent
		err  error
	)
	if args.Topic != nil && *args.Topic != "" {
		rows, err = r.deps.Events.RecentByTopic(*args.Topic, limit)
	} else {
		rows, err = r.deps.Events.Recent(limit)
	}
	if err != nil {
		return nil, err
	}
	for _, ev := range rows {
		out = append(out, CartEvent{
			EventId:    int32(ev.EventID),
			Topic:      ev.Topic,
			Source:     ev.Source,
			ItemCount:  int32(ev.ItemCount),
			TotalValue: int32(ev.TotalValue),
			Payload:    ev.Payload,
			CreatedAt:  ev.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

func (r *QueryResolver) GiftConfig(ctx context.Context) (*GiftConfig, error) {
	cfg := config.AppConfig
	ids := cfg.FreeGiftProductIDs
	if ids == nil {
		ids = []string{}
	}
	return &GiftConfig{
		FreeProductThreshold:  int32(cfg.FreeProductThreshold),
		FreeShippingThreshold: int32(cfg.FreeShippingThreshold),
		FreeProductVariantId:  cfg.FreeProductVariantID,
		GiftProductIds:        ids,
		RelyOnProductId:       cfg.RelyOnProductID,
		KitActive:             cfg.KitActive,
		ShowProgressBar:       cfg.ShowProgressBar,
	}, nil
}

// ExtensionArgs for _extension(name, args).
type ExtensionArgs struct {
	Name string
	Args *string
}

func (r *QueryResolver) Extension(ctx context.Context, args ExtensionArgs) (*string, error) {
	var m map[string]interface{}
	if args.Args != nil && *args.Args != "" {
		_ = json.Unmarshal([]byte(*args.Args), &m)
	}
	if m == nil {
		m = make(map[string]interface{})
	}
	out, err := registry.Resolve(ctx, args.Name, m)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

// MutationResolver implements Mutation fields.
type MutationResolver struct {
	deps Deps
}

// UpdateLineArgs matches the updateLine mutation arguments.
type UpdateLineArgs struct {
	LineKey  string
	Quantity int32
}

func (r *MutationResolver) UpdateLine(ctx context.Context, args UpdateLineArgs) (*CartResult, error) {
	source := graphql.SourceFromContext(ctx)
	snap, err := r.deps.Controls.UpdateQuantityFrom(ctx, source, args.LineKey, int(args.Quantity))
	if err != nil {
		return nil, err
	}
	if snap.HasErrors() {
		errs := make([]CartError, 0, len(snap.Errors))
		for field, msg := range snap.Errors {
			errs = append(errs, CartError{Field: field, Message: msg})
		}
		return &CartResult{Errors: errs}, nil
	}
	return &CartResult{Cart: cartModel(snap), Errors: []CartError{}}, nil
}

// UpdateNoteArgs matches the updateNote mutation arguments.
type UpdateNoteArgs struct {
	Note string
}

func (r *MutationResolver) UpdateNote(ctx context.Context, args UpdateNoteArgs) (*Cart, error) {
	if err := r.deps.Controls.UpdateNote(ctx, args.Note); err != nil {
		return nil, err
	}
	snap, err := r.deps.Controller.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return cartModel(snap), nil
}

// NewSchema parses the schema and returns a graphql-go Schema.
func NewSchema(deps Deps) (*gql.Schema, error) {
	return gql.ParseSchema(graphql.Schema(), &RootResolver{Deps: deps}, gql.UseFieldResolvers())
}

// Handler returns an http.Handler for GraphQL (relay format).
func Handler(schema *gql.Schema) *relay.Handler {
	return &relay.Handler{Schema: schema}
}
