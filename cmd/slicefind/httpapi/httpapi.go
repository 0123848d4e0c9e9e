// Package httpapi exposes engine.Run over HTTP, mirroring the teacher's
// main.go IncDigRules handler: bind the request JSON, run the core
// computation, respond with {success, data} or {error}.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.grandhoo.com/rock/slicelattice/engine"
	"gitlab.grandhoo.com/rock/slicelattice/internal/matrixint"
	"gitlab.grandhoo.com/rock/slicelattice/internal/rockshare/logger"
	"gitlab.grandhoo.com/rock/slicelattice/snapshot"
)

// SliceFindRequest is the wire shape of a POST /slice-find body: the new
// batch of rows plus scalar params, keyed to a prior run by Tag so the
// handler can load/save incremental state.
type SliceFindRequest struct {
	Tag     string    `json:"tag"`
	AddedX  [][]int32 `json:"addedX"`
	NewE    []float64 `json:"newE"`
	K       int       `json:"k"`
	MaxL    int       `json:"maxL"`
	MinSup  int       `json:"minSup"`
	Alpha   float64   `json:"alpha"`
	TpEval  bool      `json:"tpEval"`
	TpBlksz int       `json:"tpBlksz"`
	SelFeat bool      `json:"selFeat"`
	Verbose bool      `json:"verbose"`
	Reset   bool      `json:"reset"` // drop any saved snapshot and start fresh
}

// SliceFindResponse is the wire shape of a successful response: the decoded
// top-k slices and their stats.
type SliceFindResponse struct {
	TKValue [][]int32            `json:"tkValue"`
	TKStats []map[string]float64 `json:"tkStats"`
}

// Handler builds a gin.HandlerFunc bound to a snapshot store, the way the
// teacher's handlers close over package-level state like global_variables.
func Handler(store *snapshot.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SliceFindRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Infof("slice-find request tag=%s addedRows=%d", req.Tag, len(req.AddedX))

		if req.Reset {
			if err := store.Delete(req.Tag); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}

		in := engine.Input{
			AddedX: matrixint.Matrix(req.AddedX),
			NewE:   matrixint.ErrVec(req.NewE),
			Params: engine.Params{
				K: req.K, MaxL: req.MaxL, MinSup: req.MinSup, Alpha: req.Alpha,
				TpEval: req.TpEval, TpBlksz: req.TpBlksz, SelFeat: req.SelFeat, Verbose: req.Verbose,
			},
		}

		prev, ok, err := store.Load(req.Tag)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if ok {
			in.OldX = prev.OldX
			in.OldE = prev.OldE
			in.PrevOffsets = &prev.Offsets
			in.PrevLattice = &prev.Lattice
			in.PrevStats = &prev.Stats
			in.PrevTK = &prev.TK
			in.PrevParams = &prev.Params
		}

		out, err := engine.Run(in)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := store.Save(req.Tag, snapshot.State{
			Offsets: out.Offsets,
			OldX:    out.Xout,
			OldE:    out.EOut,
			Lattice: out.Lattice,
			Stats:   out.Stats,
			TK:      out.TK,
			Params:  out.Params,
		}); err != nil {
			logger.Errorf("failed to persist snapshot for tag=%s: %v", req.Tag, err)
		}

		resp := SliceFindResponse{TKValue: out.TKValue}
		for _, r := range out.TK.Rows {
			resp.TKStats = append(resp.TKStats, map[string]float64{
				"score": r.Score, "totalError": r.TotalError, "maxError": r.MaxError, "size": r.Size,
			})
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
	}
}
