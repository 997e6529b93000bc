// Package dynamo implementa los repositorios sobre DynamoDB.
// Join, likes y comentarios usan UpdateItem con ADD/DELETE sobre string sets,
// list_append y ConditionExpression: una sola llamada, sin read-then-write.
package dynamo

import (
	"context"
	"errors"
	"fmt"

	"petora-connect/internal/platform/apperr"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrNotFound envuelve apperr.ErrNotFound para que los servicios respondan 404 sin traducir.
var ErrNotFound = fmt.Errorf("item %w", apperr.ErrNotFound)

// API es el subconjunto del cliente DynamoDB que usamos (fakeable en tests).
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// NewClient crea el cliente; BaseEndpoint (dynamodb-local) ya viene en cfg.
func NewClient(cfg aws.Config) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg)
}

// Tables son los nombres físicos de las tablas (con prefijo por ambiente).
type Tables struct {
	Listings string
	Groups   string
	Messages string
	Posts    string
	Profiles string
}

func TableNames(prefix string) Tables {
	return Tables{
		Listings: prefix + "listings",
		Groups:   prefix + "groups",
		Messages: prefix + "group_messages",
		Posts:    prefix + "posts",
		Profiles: prefix + "profiles",
	}
}

// EnsureTables crea las tablas que falten (on-demand). Las existentes se dejan como están.
func EnsureTables(ctx context.Context, api API, t Tables) error {
	defs := []*dynamodb.CreateTableInput{
		hashTable(t.Listings, "id"),
		hashTable(t.Groups, "id"),
		{
			TableName: aws.String(t.Messages),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("groupId"), AttributeType: types.ScalarAttributeTypeS},
				{AttributeName: aws.String("sortKey"), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("groupId"), KeyType: types.KeyTypeHash},
				{AttributeName: aws.String("sortKey"), KeyType: types.KeyTypeRange},
			},
			BillingMode: types.BillingModePayPerRequest,
		},
		hashTable(t.Posts, "id"),
		hashTable(t.Profiles, "userId"),
	}

	for _, in := range defs {
		_, err := api.CreateTable(ctx, in)
		var inUse *types.ResourceInUseException
		if err != nil && !errors.As(err, &inUse) {
			return fmt.Errorf("create table %s: %w", aws.ToString(in.TableName), err)
		}
	}
	return nil
}

func hashTable(name, key string) *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName: aws.String(name),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(key), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(key), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func keyS(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{name: &types.AttributeValueMemberS{Value: value}}
}

// scanAll recorre todas las páginas del Scan.
func scanAll(ctx context.Context, api API, in *dynamodb.ScanInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		out, err := api.Scan(ctx, in)
		if err != nil {
			return nil, err
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// queryAll recorre todas las páginas del Query.
func queryAll(ctx context.Context, api API, in *dynamodb.QueryInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		out, err := api.Query(ctx, in)
		if err != nil {
			return nil, err
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
}
