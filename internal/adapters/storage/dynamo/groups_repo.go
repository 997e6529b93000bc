package dynamo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"petora-connect/internal/domain/groups"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// batchLimit es el máximo de requests por BatchWriteItem.
const batchLimit = 25

type groupItem struct {
	ID          string    `dynamodbav:"id"`
	Name        string    `dynamodbav:"name"`
	Description string    `dynamodbav:"description"`
	ImageURL    string    `dynamodbav:"imageUrl"`
	OwnerID     string    `dynamodbav:"ownerId"`
	MemberIDs   []string  `dynamodbav:"memberIds,stringset,omitempty"`
	MemberCount int       `dynamodbav:"memberCount"`
	CreatedAt   time.Time `dynamodbav:"createdAt"`
}

func (it groupItem) toDomain() groups.Group {
	members := it.MemberIDs
	if members == nil {
		members = []string{}
	}
	// los string sets no tienen orden
	sort.Strings(members)
	return groups.Group{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		ImageURL:    it.ImageURL,
		OwnerID:     it.OwnerID,
		MemberIDs:   members,
		MemberCount: it.MemberCount,
		CreatedAt:   it.CreatedAt,
	}
}

// messageItem: sortKey = createdAt en nanos con padding + id, para que Query devuelva orden cronológico.
type messageItem struct {
	GroupID    string    `dynamodbav:"groupId"`
	SortKey    string    `dynamodbav:"sortKey"`
	ID         string    `dynamodbav:"id"`
	SenderID   string    `dynamodbav:"senderId"`
	SenderName string    `dynamodbav:"senderName"`
	AvatarURL  string    `dynamodbav:"avatarUrl"`
	Text       string    `dynamodbav:"text"`
	CreatedAt  time.Time `dynamodbav:"createdAt"`
}

func messageSortKey(m groups.Message) string {
	return fmt.Sprintf("%020d#%s", m.CreatedAt.UnixNano(), m.ID)
}

type GroupsRepo struct {
	api      API
	table    string
	messages string
}

func NewGroupsRepo(api API, groupsTable, messagesTable string) *GroupsRepo {
	return &GroupsRepo{api: api, table: groupsTable, messages: messagesTable}
}

func (r *GroupsRepo) Create(ctx context.Context, g groups.Group) error {
	item, err := attributevalue.MarshalMap(groupItem{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		ImageURL:    g.ImageURL,
		OwnerID:     g.OwnerID,
		MemberIDs:   g.MemberIDs,
		MemberCount: len(g.MemberIDs),
		CreatedAt:   g.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal group: %w", err)
	}
	_, err = r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	return err
}

func (r *GroupsRepo) GetByID(ctx context.Context, id string) (groups.Group, error) {
	if strings.TrimSpace(id) == "" {
		return groups.Group{}, notFound("group", id)
	}
	out, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            keyS("id", id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return groups.Group{}, err
	}
	if len(out.Item) == 0 {
		return groups.Group{}, notFound("group", id)
	}
	return decodeGroup(out.Item)
}

func (r *GroupsRepo) List(ctx context.Context) ([]groups.Group, error) {
	items, err := scanAll(ctx, r.api, &dynamodb.ScanInput{TableName: aws.String(r.table)})
	if err != nil {
		return nil, err
	}
	out := make([]groups.Group, 0, len(items))
	for _, item := range items {
		g, err := decodeGroup(item)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// AddMember: ADD sobre el string set + contador, condicionado a que el usuario no esté.
func (r *GroupsRepo) AddMember(ctx context.Context, groupID, userID string) (groups.Group, bool, error) {
	out, err := r.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table),
		Key:                 keyS("id", groupID),
		UpdateExpression:    aws.String("ADD #members :uset, #count :one"),
		ConditionExpression: aws.String("attribute_exists(id) AND NOT contains(#members, :uid)"),
		ExpressionAttributeNames: map[string]string{
			"#members": "memberIds",
			"#count":   "memberCount",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uset": &types.AttributeValueMemberSS{Value: []string{userID}},
			":one":  &types.AttributeValueMemberN{Value: "1"},
			":uid":  &types.AttributeValueMemberS{Value: userID},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err == nil {
		g, err := decodeGroup(out.Attributes)
		return g, err == nil, err
	}
	if !isConditionFailed(err) {
		return groups.Group{}, false, err
	}

	// Condición falló: no existe o ya era miembro.
	g, err := r.GetByID(ctx, groupID)
	if err != nil {
		return groups.Group{}, false, err
	}
	return g, false, nil
}

// Delete borra el grupo y después sus mensajes en lotes.
func (r *GroupsRepo) Delete(ctx context.Context, id string) error {
	_, err := r.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.table),
		Key:                 keyS("id", id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if isConditionFailed(err) {
		return notFound("group", id)
	}
	if err != nil {
		return err
	}

	keys, err := queryAll(ctx, r.api, &dynamodb.QueryInput{
		TableName:              aws.String(r.messages),
		KeyConditionExpression: aws.String("groupId = :g"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":g": &types.AttributeValueMemberS{Value: id},
		},
		ProjectionExpression: aws.String("groupId, sortKey"),
	})
	if err != nil {
		return fmt.Errorf("query messages for cascade: %w", err)
	}
	return r.deleteBatch(ctx, keys)
}

func (r *GroupsRepo) deleteBatch(ctx context.Context, keys []map[string]types.AttributeValue) error {
	for start := 0; start < len(keys); start += batchLimit {
		end := min(start+batchLimit, len(keys))
		reqs := make([]types.WriteRequest, 0, end-start)
		for _, k := range keys[start:end] {
			reqs = append(reqs, types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: k}})
		}

		pending := map[string][]types.WriteRequest{r.messages: reqs}
		// Reintenta lo no procesado unas pocas veces (throttling).
		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt == 3 {
				return fmt.Errorf("cascade delete: %d requests unprocessed", len(pending[r.messages]))
			}
			out, err := r.api.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return fmt.Errorf("cascade delete: %w", err)
			}
			pending = out.UnprocessedItems
		}
	}
	return nil
}

func (r *GroupsRepo) AppendMessage(ctx context.Context, m groups.Message) error {
	item, err := attributevalue.MarshalMap(messageItem{
		GroupID:    m.GroupID,
		SortKey:    messageSortKey(m),
		ID:         m.ID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		AvatarURL:  m.AvatarURL,
		Text:       m.Text,
		CreatedAt:  m.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	_, err = r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.messages),
		Item:      item,
	})
	return err
}

func (r *GroupsRepo) ListMessages(ctx context.Context, groupID string) ([]groups.Message, error) {
	items, err := queryAll(ctx, r.api, &dynamodb.QueryInput{
		TableName:              aws.String(r.messages),
		KeyConditionExpression: aws.String("groupId = :g"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":g": &types.AttributeValueMemberS{Value: groupID},
		},
		ScanIndexForward: aws.Bool(true),
		ConsistentRead:   aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	var raw []messageItem
	if err := attributevalue.UnmarshalListOfMaps(items, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal messages: %w", err)
	}
	out := make([]groups.Message, 0, len(raw))
	for _, it := range raw {
		out = append(out, groups.Message{
			ID:         it.ID,
			GroupID:    it.GroupID,
			SenderID:   it.SenderID,
			SenderName: it.SenderName,
			AvatarURL:  it.AvatarURL,
			Text:       it.Text,
			CreatedAt:  it.CreatedAt,
		})
	}
	return out, nil
}

func decodeGroup(item map[string]types.AttributeValue) (groups.Group, error) {
	var it groupItem
	if err := attributevalue.UnmarshalMap(item, &it); err != nil {
		return groups.Group{}, fmt.Errorf("unmarshal group: %w", err)
	}
	return it.toDomain(), nil
}
