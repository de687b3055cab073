package mongodb_test

import (
	"context"
	"os"
	"testing"
	"time"

	. "recordstore/internal/records/adapter/persistence/mongodb"
	"recordstore/internal/records/domain/model"
	"recordstore/internal/shared/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// requireMongo conecta a un MongoDB local y omite la prueba si no hay uno.
func requireMongo(t *testing.T) *mongo.Client {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	t.Cleanup(func() { client.Disconnect(context.Background()) })
	return client
}

// newTestStore crea un store con prefijo único y limpia sus bases al final.
func newTestStore(t *testing.T) (*ContainerStore, func(projectID string)) {
	t.Helper()
	client := requireMongo(t)
	prefix := "rstest_" + uuid.NewString()[:8] + "_"
	store := NewContainerStore(client, prefix, logger.NewLogger())
	cleanup := func(projectID string) {
		t.Cleanup(func() {
			client.Database(prefix + projectID).Drop(context.Background())
		})
	}
	return store, cleanup
}

// Los valores numéricos van como float64: es la forma canónica que entrega
// el decodificador JSON en la frontera HTTP.
func sampleContainer() model.RecordMap {
	return model.RecordMap{
		"r1": model.Record{
			"id":        "r1",
			"nombre":    "Ana Torres",
			"edad":      float64(34),
			"promedio":  7.5,
			"activo":    true,
			"apodo":     nil,
			"etiquetas": []interface{}{"admin", "lima"},
			"direccion": map[string]interface{}{
				"ciudad": "Lima",
				"geo":    map[string]interface{}{"lat": -12.04, "lng": -77.03},
			},
			// Claves hostiles para BSON crudo; el contenedor viaja como bytes.
			"ruta.con.puntos": "conservada",
			"$operador":       "conservado",
		},
		"r2": model.Record{
			"id":     "r2",
			"nombre": "Luis",
			"extras": []interface{}{float64(1), "dos", map[string]interface{}{"tres": float64(3)}},
		},
	}
}

func TestContainerStore_RoundTripPreservesRecords(t *testing.T) {
	store, cleanup := newTestStore(t)
	ctx := context.Background()
	cleanup("p1")
	ref := model.NewCollectionRef("p1", "personas")

	original := sampleContainer()
	require.NoError(t, store.Persist(ctx, ref, original))

	loaded, err := store.Load(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)

	// Volver a persistir lo leído no cambia nada.
	require.NoError(t, store.Persist(ctx, ref, loaded))
	reloaded, err := store.Load(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, original, reloaded)
}

func TestContainerStore_LoadMissingContainer(t *testing.T) {
	store, cleanup := newTestStore(t)
	cleanup("p1")

	records, err := store.Load(context.Background(), model.NewCollectionRef("p1", "inexistente"))
	require.NoError(t, err)
	require.NotNil(t, records)
	assert.Empty(t, records)
}

func TestContainerStore_PersistNilMap(t *testing.T) {
	store, cleanup := newTestStore(t)
	ctx := context.Background()
	cleanup("p1")
	ref := model.NewCollectionRef("p1", "vacia")

	require.NoError(t, store.Persist(ctx, ref, nil))

	exists, err := store.Exists(ctx, ref)
	require.NoError(t, err)
	assert.True(t, exists)

	records, err := store.Load(ctx, ref)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestContainerStore_ExistsAndDrop(t *testing.T) {
	store, cleanup := newTestStore(t)
	ctx := context.Background()
	cleanup("p1")
	ref := model.NewCollectionRef("p1", "tareas")

	exists, err := store.Exists(ctx, ref)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Persist(ctx, ref, sampleContainer()))
	exists, err = store.Exists(ctx, ref)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Drop(ctx, ref))
	exists, err = store.Exists(ctx, ref)
	require.NoError(t, err)
	assert.False(t, exists)

	// Drop de un contenedor ausente es inocuo.
	require.NoError(t, store.Drop(ctx, ref))
}

func TestContainerStore_NamesPerProject(t *testing.T) {
	store, cleanup := newTestStore(t)
	ctx := context.Background()
	cleanup("p1")
	cleanup("p2")

	require.NoError(t, store.Persist(ctx, model.NewCollectionRef("p1", "tareas"), nil))
	require.NoError(t, store.Persist(ctx, model.NewCollectionRef("p1", "notas"), nil))
	require.NoError(t, store.Persist(ctx, model.NewCollectionRef("p2", "otras"), nil))

	names, err := store.Names(ctx, "p1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tareas", "notas"}, names)

	names, err = store.Names(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"otras"}, names)
}

func TestContainerStore_DropProject(t *testing.T) {
	store, cleanup := newTestStore(t)
	ctx := context.Background()
	cleanup("p1")

	require.NoError(t, store.Persist(ctx, model.NewCollectionRef("p1", "tareas"), sampleContainer()))
	require.NoError(t, store.DropProject(ctx, "p1"))

	names, err := store.Names(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, names)

	exists, err := store.Exists(ctx, model.NewCollectionRef("p1", "tareas"))
	require.NoError(t, err)
	assert.False(t, exists)
}
