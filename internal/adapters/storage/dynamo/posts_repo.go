package dynamo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"petora-connect/internal/domain/posts"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type commentItem struct {
	ID         string    `dynamodbav:"id"`
	AuthorID   string    `dynamodbav:"authorId"`
	AuthorName string    `dynamodbav:"authorName"`
	AvatarURL  string    `dynamodbav:"avatarUrl"`
	Body       string    `dynamodbav:"body"`
	CreatedAt  time.Time `dynamodbav:"createdAt"`
}

type postItem struct {
	ID           string        `dynamodbav:"id"`
	AuthorID     string        `dynamodbav:"authorId"`
	AuthorName   string        `dynamodbav:"authorName"`
	AuthorAvatar string        `dynamodbav:"authorAvatar"`
	Body         string        `dynamodbav:"body"`
	ImageURL     string        `dynamodbav:"imageUrl,omitempty"`
	LikedBy      []string      `dynamodbav:"likedBy,stringset,omitempty"`
	Comments     []commentItem `dynamodbav:"comments"`
	CreatedAt    time.Time     `dynamodbav:"createdAt"`
}

func (it postItem) toDomain() posts.Post {
	liked := it.LikedBy
	if liked == nil {
		liked = []string{}
	}
	sort.Strings(liked)
	comments := make([]posts.Comment, 0, len(it.Comments))
	for _, c := range it.Comments {
		comments = append(comments, posts.Comment(c))
	}
	return posts.Post{
		ID:           it.ID,
		AuthorID:     it.AuthorID,
		AuthorName:   it.AuthorName,
		AuthorAvatar: it.AuthorAvatar,
		Body:         it.Body,
		ImageURL:     it.ImageURL,
		LikedBy:      liked,
		LikeCount:    len(liked),
		Comments:     comments,
		CreatedAt:    it.CreatedAt,
	}
}

type PostsRepo struct {
	api   API
	table string
}

func NewPostsRepo(api API, table string) *PostsRepo {
	return &PostsRepo{api: api, table: table}
}

func (r *PostsRepo) Create(ctx context.Context, p posts.Post) error {
	comments := make([]commentItem, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, commentItem(c))
	}
	item, err := attributevalue.MarshalMap(postItem{
		ID:           p.ID,
		AuthorID:     p.AuthorID,
		AuthorName:   p.AuthorName,
		AuthorAvatar: p.AuthorAvatar,
		Body:         p.Body,
		ImageURL:     p.ImageURL,
		LikedBy:      p.LikedBy,
		Comments:     comments,
		CreatedAt:    p.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal post: %w", err)
	}
	_, err = r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	return err
}

func (r *PostsRepo) GetByID(ctx context.Context, id string) (posts.Post, error) {
	if strings.TrimSpace(id) == "" {
		return posts.Post{}, notFound("post", id)
	}
	out, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            keyS("id", id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return posts.Post{}, err
	}
	if len(out.Item) == 0 {
		return posts.Post{}, notFound("post", id)
	}
	return decodePost(out.Item)
}

func (r *PostsRepo) List(ctx context.Context) ([]posts.Post, error) {
	items, err := scanAll(ctx, r.api, &dynamodb.ScanInput{TableName: aws.String(r.table)})
	if err != nil {
		return nil, err
	}
	out := make([]posts.Post, 0, len(items))
	for _, item := range items {
		p, err := decodePost(item)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// SetLike: ADD/DELETE sobre el string set, condicionado a que el set cambie.
func (r *PostsRepo) SetLike(ctx context.Context, postID, userID string, liked bool) (posts.Post, bool, error) {
	update, cond := "ADD #liked :uset", "attribute_exists(id) AND NOT contains(#liked, :uid)"
	if !liked {
		update, cond = "DELETE #liked :uset", "attribute_exists(id) AND contains(#liked, :uid)"
	}

	out, err := r.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.table),
		Key:                      keyS("id", postID),
		UpdateExpression:         aws.String(update),
		ConditionExpression:      aws.String(cond),
		ExpressionAttributeNames: map[string]string{"#liked": "likedBy"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uset": &types.AttributeValueMemberSS{Value: []string{userID}},
			":uid":  &types.AttributeValueMemberS{Value: userID},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err == nil {
		p, err := decodePost(out.Attributes)
		return p, err == nil, err
	}
	if !isConditionFailed(err) {
		return posts.Post{}, false, err
	}
	p, err := r.GetByID(ctx, postID)
	if err != nil {
		return posts.Post{}, false, err
	}
	return p, false, nil
}

func (r *PostsRepo) AppendComment(ctx context.Context, postID string, c posts.Comment) (posts.Post, error) {
	av, err := attributevalue.Marshal(commentItem(c))
	if err != nil {
		return posts.Post{}, fmt.Errorf("marshal comment: %w", err)
	}
	out, err := r.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.table),
		Key:                      keyS("id", postID),
		UpdateExpression:         aws.String("SET #comments = list_append(if_not_exists(#comments, :empty), :c)"),
		ConditionExpression:      aws.String("attribute_exists(id)"),
		ExpressionAttributeNames: map[string]string{"#comments": "comments"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c":     &types.AttributeValueMemberL{Value: []types.AttributeValue{av}},
			":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if isConditionFailed(err) {
		return posts.Post{}, notFound("post", postID)
	}
	if err != nil {
		return posts.Post{}, err
	}
	return decodePost(out.Attributes)
}

func (r *PostsRepo) Delete(ctx context.Context, id string) error {
	_, err := r.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.table),
		Key:                 keyS("id", id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if isConditionFailed(err) {
		return notFound("post", id)
	}
	return err
}

func decodePost(item map[string]types.AttributeValue) (posts.Post, error) {
	var it postItem
	if err := attributevalue.UnmarshalMap(item, &it); err != nil {
		return posts.Post{}, fmt.Errorf("unmarshal post: %w", err)
	}
	return it.toDomain(), nil
}
