// Package vectorize converts raster images into SVG.
//
// A Pipeline decodes the image, binarizes it with an adaptive luminance threshold and traces the
// bitmap with a cascade of converter profiles, coarsest first. When every profile fails, or when
// the image cannot be decoded locally, the original bytes are sent to a remote conversion service.
// Every SVG is fitted to the pixel dimensions of the source image before it is returned.
//
// Each conversion is a Run. A Run reports progress events to a Sink, then exactly one terminal
// event, unless it is aborted: an aborted run stays silent.
//
//	pipe, err := vectorize.New(vectorize.WithRemote(client))
//	if err != nil {
//		return err
//	}
//	defer pipe.Close()
//
//	run, err := pipe.Run(ctx, vectorize.Source{Name: "logo.png", Data: data}, func(ev model.Event) {
//		fmt.Println(ev.Type, ev.Stage, ev.Percent)
//	})
//	if err != nil {
//		return err
//	}
//	res := run.Wait()
package vectorize
