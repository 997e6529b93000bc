package dynamo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"petora-connect/internal/domain/users"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Los perfiles se guardan con las mismas keys que su JSON (TagKey "json").
type ProfilesRepo struct {
	api   API
	table string
}

func NewProfilesRepo(api API, table string) *ProfilesRepo {
	return &ProfilesRepo{api: api, table: table}
}

func (r *ProfilesRepo) GetByID(ctx context.Context, userID string) (users.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return users.Profile{}, notFound("profile", userID)
	}
	out, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            keyS("userId", userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return users.Profile{}, err
	}
	if len(out.Item) == 0 {
		return users.Profile{}, notFound("profile", userID)
	}
	var p users.Profile
	if err := attributevalue.UnmarshalMapWithOptions(out.Item, &p, withJSONTags); err != nil {
		return users.Profile{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	return p, nil
}

// CreateIfAbsent: PutItem condicionado; si ya existía se devuelve el guardado.
func (r *ProfilesRepo) CreateIfAbsent(ctx context.Context, p users.Profile) (users.Profile, bool, error) {
	item, err := attributevalue.MarshalMapWithOptions(p, func(o *attributevalue.EncoderOptions) { o.TagKey = "json" })
	if err != nil {
		return users.Profile{}, false, fmt.Errorf("marshal profile: %w", err)
	}
	_, err = r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(userId)"),
	})
	if err == nil {
		return p, true, nil
	}
	if !isConditionFailed(err) {
		return users.Profile{}, false, err
	}
	cur, err := r.GetByID(ctx, p.UserID)
	if err != nil {
		return users.Profile{}, false, err
	}
	return cur, false, nil
}

func (r *ProfilesRepo) List(ctx context.Context) ([]users.Profile, error) {
	items, err := scanAll(ctx, r.api, &dynamodb.ScanInput{TableName: aws.String(r.table)})
	if err != nil {
		return nil, err
	}
	out := make([]users.Profile, 0, len(items))
	for _, item := range items {
		var p users.Profile
		if err := attributevalue.UnmarshalMapWithOptions(item, &p, withJSONTags); err != nil {
			return nil, fmt.Errorf("unmarshal profile: %w", err)
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func withJSONTags(o *attributevalue.DecoderOptions) { o.TagKey = "json" }
