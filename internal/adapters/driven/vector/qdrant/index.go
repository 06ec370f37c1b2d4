// Package qdrant provides a vector index backed by a Qdrant server over gRPC.
package qdrant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// Payload keys stored with every point.
const (
	keyRecordID     = "record_id"
	keyCourseTitle  = "course_title"
	keyLessonNumber = "lesson_number"
)

// VectorIndex is the sole owner of Qdrant operations.
type VectorIndex struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
}

// New creates a VectorIndex connected to Qdrant at the given gRPC address.
// The connection is established lazily on first use.
func New(addr string) (*VectorIndex, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant: dial %s: %w", addr, err)
	}
	return &VectorIndex{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
	}, nil
}

// Close closes the underlying gRPC connection.
func (v *VectorIndex) Close() error {
	return v.conn.Close()
}

// EnsureCollection creates the collection if it doesn't exist.
func (v *VectorIndex) EnsureCollection(ctx context.Context, name string, dimensions int) error {
	list, err := v.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("qdrant: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == name {
			return nil
		}
	}

	_, err = v.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: name,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dimensions),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant: create collection %s: %w", name, err)
	}
	return nil
}

// DeleteCollection deletes the collection.
func (v *VectorIndex) DeleteCollection(ctx context.Context, name string) error {
	_, err := v.collections.Delete(ctx, &pb.DeleteCollection{CollectionName: name})
	if err != nil {
		return fmt.Errorf("qdrant: delete collection %s: %w", name, err)
	}
	return nil
}

// Upsert stores records. IDs that are not UUIDs are mapped to stable UUIDs
// and the original ID is kept in the payload.
func (v *VectorIndex) Upsert(ctx context.Context, name string, records []driven.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(records))
	for i, r := range records {
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: PointID(r.ID)},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: r.Vector},
				},
			},
			Payload: toPayload(r),
		}
	}

	wait := true
	_, err := v.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: name,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert %d points: %w", len(records), err)
	}
	return nil
}

// Delete removes every point of a collection matching filter.
func (v *VectorIndex) Delete(ctx context.Context, name string, filter driven.VectorFilter) error {
	wait := true
	_, err := v.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: name,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				Filter: toFilter(filter),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant: delete from %s: %w", name, err)
	}
	return nil
}

// Search performs filtered k-NN similarity search.
func (v *VectorIndex) Search(
	ctx context.Context, name string, query []float32, k int, filter driven.VectorFilter,
) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}
	req := &pb.SearchPoints{
		CollectionName: name,
		Vector:         query,
		Limit:          uint64(k),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	}
	if f := toFilter(filter); len(f.GetMust()) > 0 {
		req.Filter = f
	}

	resp, err := v.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("qdrant: search %s: %w", name, err)
	}

	hits := make([]driven.VectorHit, len(resp.GetResult()))
	for i, r := range resp.GetResult() {
		id, payload := fromPayload(r.GetPayload())
		if id == "" {
			id = r.GetId().GetUuid()
		}
		hits[i] = driven.VectorHit{
			ID:         id,
			Similarity: float64(r.GetScore()),
			Payload:    payload,
		}
	}
	return hits, nil
}

// PointID returns id when it is a UUID, else a stable UUID derived from it.
func PointID(id string) string {
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()
}

func toPayload(r driven.VectorRecord) map[string]*pb.Value {
	payload := map[string]*pb.Value{
		keyRecordID:    {Kind: &pb.Value_StringValue{StringValue: r.ID}},
		keyCourseTitle: {Kind: &pb.Value_StringValue{StringValue: r.Payload.CourseTitle}},
	}
	if r.Payload.LessonNumber != nil {
		payload[keyLessonNumber] = &pb.Value{
			Kind: &pb.Value_IntegerValue{IntegerValue: int64(*r.Payload.LessonNumber)},
		}
	}
	return payload
}

func fromPayload(payload map[string]*pb.Value) (string, driven.VectorPayload) {
	var out driven.VectorPayload
	out.CourseTitle = payload[keyCourseTitle].GetStringValue()
	if v, ok := payload[keyLessonNumber]; ok {
		if iv, ok := v.GetKind().(*pb.Value_IntegerValue); ok {
			n := int(iv.IntegerValue)
			out.LessonNumber = &n
		}
	}
	return payload[keyRecordID].GetStringValue(), out
}

func toFilter(f driven.VectorFilter) *pb.Filter {
	var must []*pb.Condition
	if f.CourseTitle != "" {
		must = append(must, keywordMatch(keyCourseTitle, f.CourseTitle))
	}
	if f.LessonNumber != nil {
		must = append(must, integerMatch(keyLessonNumber, int64(*f.LessonNumber)))
	}
	return &pb.Filter{Must: must}
}

func keywordMatch(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: key,
				Match: &pb.Match{
					MatchValue: &pb.Match_Keyword{Keyword: value},
				},
			},
		},
	}
}

func integerMatch(key string, value int64) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: key,
				Match: &pb.Match{
					MatchValue: &pb.Match_Integer{Integer: value},
				},
			},
		},
	}
}
