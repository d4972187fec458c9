// Package qdrant provides a vector index adapter backed by Qdrant over gRPC.
package qdrant

import (
	"context"
	"crypto/tls"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// apiKeyHeader is the gRPC metadata key Qdrant reads the credential from.
const apiKeyHeader = "api-key"

// idNamespace derives stable point UUIDs from ids that are not numeric.
var idNamespace = uuid.MustParse("6f1c2a8e-6f0b-4c1e-9a55-0d4f5f2b7c31")

// pointsAPI is the subset of pb.PointsClient used by Index.
type pointsAPI interface {
	Upsert(ctx context.Context, in *pb.UpsertPoints, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error)
}

// collectionsAPI is the subset of pb.CollectionsClient used by Index.
type collectionsAPI interface {
	List(ctx context.Context, in *pb.ListCollectionsRequest, opts ...grpc.CallOption) (*pb.ListCollectionsResponse, error)
	Create(ctx context.Context, in *pb.CreateCollection, opts ...grpc.CallOption) (*pb.CollectionOperationResponse, error)
	Get(ctx context.Context, in *pb.GetCollectionInfoRequest, opts ...grpc.CallOption) (*pb.GetCollectionInfoResponse, error)
}

// Config holds connection settings for a Qdrant instance.
type Config struct {
	// Address is the gRPC host:port (e.g. localhost:6334).
	Address string

	// APIKey is sent with every request when non-empty.
	APIKey string

	// TLS enables transport security.
	TLS bool
}

// Index stores section vectors as Qdrant points, one collection per index name.
type Index struct {
	conn        *grpc.ClientConn
	points      pointsAPI
	collections collectionsAPI
}

// New connects to Qdrant. The connection is established lazily on first use.
func New(cfg Config) (*Index, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("%w: qdrant address", domain.ErrConfigurationMissing)
	}

	creds := insecure.NewCredentials()
	if cfg.TLS {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	opts := []grpc.DialOption{grpc.WithTransportCredentials(creds)}
	if cfg.APIKey != "" {
		opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
	}

	conn, err := grpc.NewClient(cfg.Address, opts...)
	if err != nil {
		return nil, fmt.Errorf("qdrant: dial %s: %w", cfg.Address, err)
	}
	return &Index{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
	}, nil
}

// newWithClients builds an Index around pre-made clients.
func newWithClients(points pointsAPI, collections collectionsAPI) *Index {
	return &Index{points: points, collections: collections}
}

func apiKeyInterceptor(key string) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		ctx = metadata.AppendToOutgoingContext(ctx, apiKeyHeader, key)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// ListIndexNames returns the names of all collections.
func (x *Index) ListIndexNames(ctx context.Context) ([]string, error) {
	list, err := x.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return nil, fmt.Errorf("%w: qdrant list collections: %w", domain.ErrVectorIndexUnavailable, err)
	}
	names := make([]string, 0, len(list.GetCollections()))
	for _, c := range list.GetCollections() {
		names = append(names, c.GetName())
	}
	return names, nil
}

// CreateIndex creates a collection with a single unnamed vector.
func (x *Index) CreateIndex(ctx context.Context, name string, dimension int, metric domain.IndexMetric) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrInvalidInput, dimension)
	}
	distance, err := toDistance(metric)
	if err != nil {
		return err
	}

	_, err = x.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: name,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dimension),
					Distance: distance,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: qdrant create collection %s: %w", domain.ErrVectorIndexUnavailable, name, err)
	}
	return nil
}

// Upsert writes records as points and waits for the write to be applied.
func (x *Index) Upsert(ctx context.Context, indexName string, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(records))
	for i, r := range records {
		payload := make(map[string]*pb.Value, len(r.Metadata))
		for k, v := range r.Metadata {
			payload[k] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: v}}
		}
		points[i] = &pb.PointStruct{
			Id: pointID(r.ID),
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: r.Values},
				},
			},
			Payload: payload,
		}
	}

	wait := true
	_, err := x.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: indexName,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("%w: qdrant upsert %d points into %s: %w",
			domain.ErrVectorIndexUnavailable, len(records), indexName, err)
	}
	return nil
}

// Stats reports the collection's vector size and point count.
func (x *Index) Stats(ctx context.Context, indexName string) (*domain.IndexStats, error) {
	resp, err := x.collections.Get(ctx, &pb.GetCollectionInfoRequest{CollectionName: indexName})
	if err != nil {
		return nil, fmt.Errorf("%w: qdrant collection info %s: %w", domain.ErrVectorIndexUnavailable, indexName, err)
	}
	info := resp.GetResult()
	return &domain.IndexStats{
		Name:        indexName,
		Dimension:   int(info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()),
		VectorCount: info.GetPointsCount(),
	}, nil
}

// Close closes the underlying gRPC connection.
func (x *Index) Close() error {
	if x.conn == nil {
		return nil
	}
	return x.conn.Close()
}

// pointID maps a record id onto a Qdrant point id. Decimal ids become
// numeric points, UUIDs are used as-is and anything else is hashed into
// a name-based UUID.
func pointID(id string) *pb.PointId {
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		return &pb.PointId{PointIdOptions: &pb.PointId_Num{Num: n}}
	}
	if u, err := uuid.Parse(id); err == nil {
		return &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: u.String()}}
	}
	return &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: uuid.NewSHA1(idNamespace, []byte(id)).String()}}
}

func toDistance(metric domain.IndexMetric) (pb.Distance, error) {
	switch metric {
	case domain.MetricCosine, "":
		return pb.Distance_Cosine, nil
	case domain.MetricDotProduct:
		return pb.Distance_Dot, nil
	case domain.MetricEuclidean:
		return pb.Distance_Euclid, nil
	default:
		return pb.Distance_UnknownDistance, fmt.Errorf("%w: metric %q", domain.ErrUnsupportedType, metric)
	}
}
