package services

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"alfredoptarigan/skill-analyzer/internal/logger"
	"alfredoptarigan/skill-analyzer/internal/models"
	"alfredoptarigan/skill-analyzer/internal/skills"
)

// SkillIndex ranks documents by overlap with a requested skill set.
type SkillIndex interface {
	EnsureCollection(ctx context.Context) error
	Index(ctx context.Context, documentID string, matched []string) error
	Search(ctx context.Context, wanted []string, limit int) ([]models.CandidateMatch, error)
	Close() error
}

// pointNamespace seeds the deterministic point IDs.
var pointNamespace = uuid.MustParse("5b8f0c9e-3f4a-4d55-9a57-6a1f2d3c4b70")

type qdrantIndex struct {
	client         *qdrant.Client
	collectionName string
	lexicon        *skills.Lexicon
	log            *zap.Logger
}

func NewQdrantIndex(urlStr, apiKey, collectionName string, lexicon *skills.Lexicon, log *zap.Logger) (SkillIndex, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	if host == "" {
		return nil, fmt.Errorf("invalid Qdrant URL: missing host in %q", urlStr)
	}
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantIndex{
		client:         client,
		collectionName: collectionName,
		lexicon:        lexicon,
		log:            logger.OrNop(log),
	}, nil
}

// EnsureCollection implements SkillIndex.
func (q *qdrantIndex) EnsureCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		q.log.Info("qdrant collection ready", zap.String("collection", q.collectionName))
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(q.lexicon.Len()),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.log.Info("qdrant collection created",
		zap.String("collection", q.collectionName),
		zap.Int("dimension", q.lexicon.Len()),
	)
	return nil
}

// Index implements SkillIndex. Re-indexing a document overwrites its point;
// a document with no skills is removed.
func (q *qdrantIndex) Index(ctx context.Context, documentID string, matched []string) error {
	id := qdrant.NewID(PointID(documentID))

	vector, hits := SkillVector(q.lexicon, matched)
	if hits == 0 {
		_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
			CollectionName: q.collectionName,
			Wait:           qdrant.PtrOf(true),
			Points: &qdrant.PointsSelector{
				PointsSelectorOneOf: &qdrant.PointsSelector_Points{
					Points: &qdrant.PointsIdsList{Ids: []*qdrant.PointId{id}},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("failed to delete point: %w", err)
		}
		return nil
	}

	point := &qdrant.PointStruct{
		Id:      id,
		Vectors: qdrant.NewVectors(vector...),
		Payload: qdrant.NewValueMap(map[string]any{
			"document_id": documentID,
			"skills":      strings.Join(matched, ","),
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}
	return nil
}

// Search implements SkillIndex.
func (q *qdrantIndex) Search(ctx context.Context, wanted []string, limit int) ([]models.CandidateMatch, error) {
	vector, hits := SkillVector(q.lexicon, wanted)
	if hits == 0 {
		return nil, fmt.Errorf("%w: none of the requested skills are in the lexicon", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 10
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		ScoreThreshold: qdrant.PtrOf(float32(0.0001)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]models.CandidateMatch, 0, len(points))
	for _, point := range points {
		match := models.CandidateMatch{Score: point.Score, Skills: []string{}}

		if v, ok := point.Payload["document_id"]; ok {
			if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				match.DocumentID = val.StringValue
			}
		}
		if v, ok := point.Payload["skills"]; ok {
			if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok && val.StringValue != "" {
				match.Skills = strings.Split(val.StringValue, ",")
			}
		}

		results = append(results, match)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results, nil
}

// PointID is the deterministic Qdrant point ID for a document.
func PointID(documentID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(documentID)).String()
}

// SkillVector one-hot encodes terms over the lexicon. Unknown terms are ignored;
// hits counts the distinct known ones.
func SkillVector(lexicon *skills.Lexicon, terms []string) (vector []float32, hits int) {
	vector = make([]float32, lexicon.Len())
	for _, term := range terms {
		pos, ok := lexicon.Position(term)
		if !ok || vector[pos] == 1 {
			continue
		}
		vector[pos] = 1
		hits++
	}
	return vector, hits
}

// Close releases the gRPC connection.
func (q *qdrantIndex) Close() error {
	return q.client.Close()
}
