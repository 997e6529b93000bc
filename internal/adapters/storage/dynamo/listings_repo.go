package dynamo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"petora-connect/internal/domain/listings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type listingItem struct {
	ID              string    `dynamodbav:"id"`
	OwnerID         string    `dynamodbav:"ownerId,omitempty"`
	Name            string    `dynamodbav:"name"`
	Species         string    `dynamodbav:"species"`
	Breed           string    `dynamodbav:"breed"`
	Age             string    `dynamodbav:"age"`
	Gender          string    `dynamodbav:"gender"`
	Location        string    `dynamodbav:"location"`
	ListingType     string    `dynamodbav:"listingType"`
	Price           *float64  `dynamodbav:"price,omitempty"`
	Description     string    `dynamodbav:"description"`
	ImageURL        string    `dynamodbav:"imageUrl"`
	ReporterContact string    `dynamodbav:"reporterContact,omitempty"`
	CreatedAt       time.Time `dynamodbav:"createdAt"`
	UpdatedAt       time.Time `dynamodbav:"updatedAt"`
}

func toListingItem(l listings.Listing) listingItem {
	return listingItem{
		ID:              l.ID,
		OwnerID:         l.OwnerID,
		Name:            l.Name,
		Species:         string(l.Species),
		Breed:           l.Breed,
		Age:             l.Age,
		Gender:          string(l.Gender),
		Location:        l.Location,
		ListingType:     string(l.ListingType),
		Price:           l.Price,
		Description:     l.Description,
		ImageURL:        l.ImageURL,
		ReporterContact: l.ReporterContact,
		CreatedAt:       l.CreatedAt.UTC(),
		UpdatedAt:       l.UpdatedAt.UTC(),
	}
}

func (it listingItem) toDomain() listings.Listing {
	return listings.Listing{
		ID:              it.ID,
		OwnerID:         it.OwnerID,
		Name:            it.Name,
		Species:         listings.Species(it.Species),
		Breed:           it.Breed,
		Age:             it.Age,
		Gender:          listings.Gender(it.Gender),
		Location:        it.Location,
		ListingType:     listings.ListingType(it.ListingType),
		Price:           it.Price,
		Description:     it.Description,
		ImageURL:        it.ImageURL,
		ReporterContact: it.ReporterContact,
		CreatedAt:       it.CreatedAt,
		UpdatedAt:       it.UpdatedAt,
	}
}

type ListingsRepo struct {
	api   API
	table string
}

func NewListingsRepo(api API, table string) *ListingsRepo {
	return &ListingsRepo{api: api, table: table}
}

func (r *ListingsRepo) Create(ctx context.Context, l listings.Listing) error {
	return r.put(ctx, l, "attribute_not_exists(id)")
}

// Update reemplaza el item completo (last-writer-wins) si existe.
func (r *ListingsRepo) Update(ctx context.Context, l listings.Listing) error {
	err := r.put(ctx, l, "attribute_exists(id)")
	if isConditionFailed(err) {
		return notFound("listing", l.ID)
	}
	return err
}

func (r *ListingsRepo) put(ctx context.Context, l listings.Listing, cond string) error {
	item, err := attributevalue.MarshalMap(toListingItem(l))
	if err != nil {
		return fmt.Errorf("marshal listing: %w", err)
	}
	_, err = r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String(cond),
	})
	return err
}

func (r *ListingsRepo) Delete(ctx context.Context, id string) error {
	_, err := r.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.table),
		Key:                 keyS("id", id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if isConditionFailed(err) {
		return notFound("listing", id)
	}
	return err
}

func (r *ListingsRepo) GetByID(ctx context.Context, id string) (listings.Listing, error) {
	if strings.TrimSpace(id) == "" {
		return listings.Listing{}, notFound("listing", id)
	}
	out, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            keyS("id", id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return listings.Listing{}, err
	}
	if len(out.Item) == 0 {
		return listings.Listing{}, notFound("listing", id)
	}
	var it listingItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return listings.Listing{}, fmt.Errorf("unmarshal listing: %w", err)
	}
	return it.toDomain(), nil
}

// List hace Scan con filtro; el volumen de un marketplace local no justifica GSIs todavía.
func (r *ListingsRepo) List(ctx context.Context, q listings.Query) ([]listings.Listing, error) {
	in := &dynamodb.ScanInput{TableName: aws.String(r.table)}

	var conds []string
	values := map[string]types.AttributeValue{}
	if q.ListingType != "" {
		conds = append(conds, "listingType = :t")
		values[":t"] = &types.AttributeValueMemberS{Value: string(q.ListingType)}
	}
	if q.OwnerID != "" {
		conds = append(conds, "ownerId = :o")
		values[":o"] = &types.AttributeValueMemberS{Value: q.OwnerID}
	}
	if len(conds) > 0 {
		in.FilterExpression = aws.String(strings.Join(conds, " AND "))
		in.ExpressionAttributeValues = values
	}

	items, err := scanAll(ctx, r.api, in)
	if err != nil {
		return nil, err
	}
	var raw []listingItem
	if err := attributevalue.UnmarshalListOfMaps(items, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal listings: %w", err)
	}

	out := make([]listings.Listing, 0, len(raw))
	for _, it := range raw {
		out = append(out, it.toDomain())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
